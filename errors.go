package authform

import (
	"github.com/tinywasm/fmt"
	_ "github.com/tinywasm/fmt/dictionary"
)

var (
	ErrInvalidCredentials = fmt.Err("access", "denied")          // EN: Access Denied / ES: Acceso Denegado
	ErrSuspended          = fmt.Err("user", "suspended")         // EN: User Suspended / ES: Usuario Suspendido
	ErrEmailTaken         = fmt.Err("email", "registered")       // EN: Email Registered / ES: Correo electrónico Registrado
	ErrWeakPassword       = fmt.Err("password", "weak")          // EN: Password Weak / ES: Contraseña Débil
	ErrPasswordTooLong    = fmt.Err("password", "too", "long")   // EN: Password Too Long
	ErrSessionExpired     = fmt.Err("token", "expired")          // EN: Token Expired / ES: Token Expirado
	ErrSessionNotFound    = fmt.Err("session", "not", "found")   // EN: Session Not Found / ES: Sesión No Encontrada
	ErrNotFound           = fmt.Err("user", "not", "found")      // EN: User Not Found / ES: Usuario No Encontrado
	ErrProviderNotFound   = fmt.Err("provider", "not", "found")  // EN: Provider Not Found / ES: Proveedor No Encontrado
	ErrInvalidOAuthState  = fmt.Err("state", "invalid")          // EN: State Invalid / ES: Estado Inválido
	ErrInvalidMode        = fmt.Err("mode", "invalid")           // EN: Mode Invalid / ES: Modo Inválido
	ErrSubmitInFlight     = fmt.Err("request", "in", "progress") // EN: Request In Progress / ES: Solicitud En Progreso
)
