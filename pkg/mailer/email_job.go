package mailer

// EmailJob is the JSON payload put on the RabbitMQ queue for sending
// email. Either Template+Data or Subject with Text/HTML must be set.
type EmailJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"` // "welcome", "verify_email", "forgot_password"
	Data     map[string]any `json:"data,omitempty"`
}
