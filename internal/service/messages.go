package service

import (
	"fmt"

	"creatorflow/internal/models"
)

const emailStyle = `
	body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
	.container { max-width: 600px; margin: 0 auto; padding: 20px; }
	.header { background-color: #4a90e2; color: white; padding: 20px; text-align: center; border-radius: 5px 5px 0 0; }
	.content { background-color: #f9f9f9; padding: 30px; border-radius: 0 0 5px 5px; }
	.button { display: inline-block; padding: 12px 30px; background-color: #4a90e2; color: white; text-decoration: none; border-radius: 5px; margin: 20px 0; }
	.footer { text-align: center; margin-top: 20px; font-size: 12px; color: #666; }
`

// ComposeInvitation builds the onboarding invitation for a creator
func ComposeInvitation(creator *models.Creator, appBaseURL string) Message {
	bookingLink := fmt.Sprintf("%s/onboarding/book?creator=%d", appBaseURL, creator.ID)

	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<style>%s</style>
</head>
<body>
	<div class="container">
		<div class="header">
			<h1>You're Invited</h1>
		</div>
		<div class="content">
			<p>Hi %s,</p>
			<p>Your application has been reviewed and we'd love to get you started. The next step is a short onboarding meeting with our team.</p>
			<p style="text-align: center;">
				<a href="%s" class="button">Book Your Meeting</a>
			</p>
			<p>Or copy and paste this link into your browser:</p>
			<p style="word-break: break-all; font-size: 12px; color: #666;">%s</p>
		</div>
		<div class="footer">
			<p>This is an automated email. Please do not reply.</p>
		</div>
	</div>
</body>
</html>
`, emailStyle, creator.Name, bookingLink, bookingLink)

	textBody := fmt.Sprintf(`Hi %s,

Your application has been reviewed and we'd love to get you started. The next step is a short onboarding meeting with our team.

Book your meeting here:
%s

---
This is an automated email. Please do not reply.
`, creator.Name, bookingLink)

	return Message{
		CreatorID: creator.ID,
		EmailType: models.EmailTypeInvitation,
		Recipient: creator.Email,
		Subject:   "Your Creator Onboarding Invitation",
		HTMLBody:  htmlBody,
		TextBody:  textBody,
	}
}

// ComposeAccessGranted builds the notification sent when a creator's
// access level is raised
func ComposeAccessGranted(creator *models.Creator, level models.AccessLevel, appBaseURL string) Message {
	loginLink := fmt.Sprintf("%s/login", appBaseURL)

	var levelLine string
	switch level {
	case models.AccessFull:
		levelLine = "You now have full access to the creator platform."
	case models.AccessMeetingOnly:
		levelLine = "You now have access to the meeting and onboarding area."
	default:
		levelLine = "Your access level has been updated."
	}

	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<style>%s</style>
</head>
<body>
	<div class="container">
		<div class="header">
			<h1>Access Granted</h1>
		</div>
		<div class="content">
			<p>Hi %s,</p>
			<p>%s</p>
			<p style="text-align: center;">
				<a href="%s" class="button">Sign In</a>
			</p>
		</div>
		<div class="footer">
			<p>This is an automated email. Please do not reply.</p>
		</div>
	</div>
</body>
</html>
`, emailStyle, creator.Name, levelLine, loginLink)

	textBody := fmt.Sprintf(`Hi %s,

%s

Sign in here: %s

---
This is an automated email. Please do not reply.
`, creator.Name, levelLine, loginLink)

	return Message{
		CreatorID: creator.ID,
		EmailType: models.EmailTypeAccessGranted,
		Recipient: creator.Email,
		Subject:   "Your Access Has Been Updated",
		HTMLBody:  htmlBody,
		TextBody:  textBody,
	}
}
