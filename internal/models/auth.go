package models

type Login struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SendCode struct {
	Email string `json:"email"`
}

// Registration is the full signup payload. It is held client-side between
// requesting a code and verifying it; nothing is persisted until the code
// checks out.
type Registration struct {
	Name              string  `json:"name"`
	Email             string  `json:"email"`
	Password          string  `json:"password"`
	ExchangeAPIKey    string  `json:"exchange_api_key"`
	ExchangeAPISecret string  `json:"exchange_api_secret"`
	InitialFunds      float64 `json:"initial_funds"`
	Code              string  `json:"code"`
}

type ResetPassword struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"new_password"`
}
