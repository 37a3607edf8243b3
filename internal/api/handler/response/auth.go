package response

type TokenResponseDTO struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expiresIn"`
}
