package models

// VodpackerJWT is the claims payload of a signed job submission token.
type VodpackerJWT struct {
	Issuer    string       `json:"iss"` // optional
	Subject   string       `json:"sub"`
	IssuedAt  int64        `json:"iat"`
	ExpiresAt int64        `json:"exp"`
	Job       TranscodeJob `json:"job"`
}
