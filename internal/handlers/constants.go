package handlers

const SessionCookieName = "session_id"
