package mail

type WelcomeEmailData struct {
	Name   string
	Course string
}
