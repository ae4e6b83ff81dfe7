package domain

import "github.com/golang-jwt/jwt/v5"

// Claims são as informações do usuário carregadas no token JWT.
// O token é emitido pelo serviço de autenticação; aqui ele só é validado.
type Claims struct {
	UserID     int
	UserEmail  string
	UserRoleID int
	jwt.RegisteredClaims
}
