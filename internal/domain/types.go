package domain

type ExchangeID string

type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)
