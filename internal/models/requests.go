package models

// RegistrationRequest is the body of POST /register. Values are taken
// verbatim from the registration form.
type RegistrationRequest struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password"`
}

// SignupRequest is carried in the URL of POST /activities/{id}/signup, never
// in a body.
type SignupRequest struct {
	ActivityID ActivityID `json:"-"`
	Email      string     `json:"-"`
}

// SignupResponse is the success body of the signup endpoint.
type SignupResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the body the server sends with a non-ok status. Detail
// stays raw because validation failures carry a list instead of a string.
type ErrorResponse struct {
	Detail interface{} `json:"detail"`
}

// DetailText returns Detail when it is a string.
func (e ErrorResponse) DetailText() string {
	if s, ok := e.Detail.(string); ok {
		return s
	}
	return ""
}
