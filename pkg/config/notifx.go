package config

// NotifxConfig selects and configures the outbound mail provider.
type NotifxConfig struct {
	Provider    string
	FromAddress string
	FromName    string
	AWSRegion   string
}

func loadNotifxConfig() NotifxConfig {
	return NotifxConfig{
		Provider:    getEnv("NOTIFX_PROVIDER", "console"),
		FromAddress: getEnv("NOTIFX_FROM_ADDRESS", getEnv("MAIL_USERNAME", "noreply@quizcraft.dev")),
		FromName:    getEnv("NOTIFX_FROM_NAME", "Quizcraft"),
		AWSRegion:   getEnv("NOTIFX_AWS_REGION", getEnv("AWS_REGION", "us-east-1")),
	}
}

const (
	MailDeliveryDirect = "direct"
	MailDeliveryQueue  = "queue"
)

// MailConfig holds SMTP credentials and the delivery mode for OTP mail.
type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Delivery string
}

func loadMailConfig() MailConfig {
	return MailConfig{
		Host:     getEnv("MAIL_HOST", "smtp.gmail.com"),
		Port:     getEnvInt("MAIL_PORT", 587),
		Username: getEnv("MAIL_USERNAME", ""),
		Password: getEnv("MAIL_PASSWORD", ""),
		Delivery: getEnv("MAIL_DELIVERY", MailDeliveryDirect),
	}
}
