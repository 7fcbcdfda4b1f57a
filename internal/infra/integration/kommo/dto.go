package kommo

type CreateLeadInput struct {
	StudentName string
	CourseName  string
	Email       string
	Phone       string
	Price       float64
}

type embeddedIDs struct {
	Embedded struct {
		Leads    []idOnly `json:"leads"`
		Contacts []idOnly `json:"contacts"`
	} `json:"_embedded"`
}

type idOnly struct {
	ID int `json:"id"`
}
