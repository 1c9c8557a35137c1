package utils

import (
	"fmt"
	"log"
	"net/smtp"
	"strings"
	"time"

	"lms/config"
)

// SendEmail sends an HTML email through the configured SMTP account.
func SendEmail(to []string, subject string, htmlBody string) error {
	smtpHost := "smtp.gmail.com"
	smtpPort := "587"

	from := config.AppConfig.EmailSender
	password := config.AppConfig.EmailPassword

	if from == "" || password == "" {
		log.Println("Email sender not configured, skipping email:", subject)
		return nil
	}

	// MIME basics
	msg := "MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n"
	msg += fmt.Sprintf("From: LMS <%s>\r\n", from)
	msg += fmt.Sprintf("To: %s\r\n", strings.Join(to, ","))
	msg += fmt.Sprintf("Subject: %s\r\n\r\n", subject)
	msg += htmlBody

	auth := smtp.PlainAuth("", from, password, smtpHost)

	if err := smtp.SendMail(smtpHost+":"+smtpPort, auth, from, to, []byte(msg)); err != nil {
		log.Printf("Error sending email %q: %v", subject, err)
		return err
	}
	return nil
}

func getEmailTemplate(title string, bodyContent string) string {
	return fmt.Sprintf(`
	<!DOCTYPE html>
	<html>
	<head>
		<style>
			body { font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; background-color: #F6F6F6; margin: 0; padding: 0; }
			.container { max-width: 600px; margin: 40px auto; background: #FFFFFF; border-radius: 8px; overflow: hidden; }
			.header { background-color: #1D3557; padding: 30px; text-align: center; }
			.header h1 { color: #FFFFFF; margin: 0; font-size: 24px; letter-spacing: 1px; }
			.content { padding: 40px 30px; color: #1D3557; line-height: 1.6; }
			.footer { background-color: #F6F6F6; padding: 20px; text-align: center; font-size: 12px; color: #666666; }
			.info-box { background: #E8F0FE; padding: 15px; border-radius: 4px; border-left: 4px solid #457B9D; margin: 20px 0; }
		</style>
	</head>
	<body>
		<div class="container">
			<div class="header">
				<h1>LEARNING PLATFORM</h1>
			</div>
			<div class="content">
				<h2>%s</h2>
				%s
			</div>
			<div class="footer">
				&copy; 2026 Learning Platform. All rights reserved.
			</div>
		</div>
	</body>
	</html>
	`, title, bodyContent)
}

// --- Triggers ---

// SendWelcomeEmail greets a newly registered user.
func SendWelcomeEmail(email, name string) {
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Welcome aboard! Your account has been created and you can log in right away.</p>
	`, name)
	SendEmail([]string{email}, "Welcome to the Learning Platform", getEmailTemplate("Welcome!", body))
}

// SendEnrollmentEmail notifies a learner that they were enrolled into a cohort.
func SendEnrollmentEmail(email, name, courseTitle, cohortName string, startDate time.Time) {
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>You have been enrolled into <strong>%s</strong> (cohort <strong>%s</strong>).</p>
		<div class="info-box">Classes start on <strong>%s</strong>.</div>
	`, name, courseTitle, cohortName, startDate.Format("January 2, 2006"))
	SendEmail([]string{email}, "You have been enrolled!", getEmailTemplate("Enrollment Confirmed", body))
}

// SendTutorAssignedEmail notifies a tutor about a new course assignment.
func SendTutorAssignedEmail(email, name, courseTitle string) {
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>You have been assigned as a tutor for <strong>%s</strong>. You can now manage its content.</p>
	`, name, courseTitle)
	SendEmail([]string{email}, "New course assignment", getEmailTemplate("Course Assignment", body))
}

// SendPasswordResetEmail delivers a reset token to the account email.
func SendPasswordResetEmail(email, name, token string) {
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>A password reset was requested for your account. Use the token below within the next hour:</p>
		<div class="info-box"><strong>%s</strong></div>
		<p>If you did not request this, you can safely ignore this email.</p>
	`, name, token)
	SendEmail([]string{email}, "Password reset request", getEmailTemplate("Password Reset", body))
}
