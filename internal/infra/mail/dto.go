package mail

type NewLeadEmailData struct {
	LeadID   string
	Name     string
	Email    string
	WhatsApp string
	Profile  string
	Company  string
	Revenue  string
}

type EmailSender struct {
	From   string
	To     string
	dialer Dialer
}
