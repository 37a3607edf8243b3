package request

type TokenDTO struct {
	User     string `json:"user" validate:"required"`
	Password string `json:"password" validate:"required"`
}
