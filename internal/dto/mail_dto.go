// FILE: internal/dto/mail_dto.go
package dto

// PublishMailMessage is the payload carried on the mail topic. Kind selects
// the template on the consumer side.
type PublishMailMessage struct {
	Kind    string `json:"kind"` // "verification" | "password_reset"
	ToEmail string `json:"to_email"`
	Token   string `json:"token"`
}

const (
	MailKindVerification  = "verification"
	MailKindPasswordReset = "password_reset"
)
