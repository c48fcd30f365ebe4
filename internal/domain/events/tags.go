package events

import "github.com/dropDatabas3/splice/internal/eventlog"

// Claves de tag.
const (
	KeyUsername          = "username"
	KeyEmail             = "email"
	KeyDomain            = "domain"
	KeyUserID            = "userId"
	KeyEventType         = "eventType"
	KeyVerificationToken = "verificationToken"
	KeySourceEvent       = "sourceEvent"
	KeyStatus            = "status"
)

// Valores del tag domain.
const (
	DomainRegistration = "registration"
	DomainLogin        = "login"
	DomainProfile      = "profile"
	DomainVerification = "verification"
)

const StatusFailed = "failed"

func RegisteredTags(p UserRegistered) []eventlog.Tag {
	return []eventlog.Tag{
		eventlog.T(KeyUsername, p.Username),
		eventlog.T(KeyEmail, p.Email),
		eventlog.T(KeyDomain, DomainRegistration),
		eventlog.T(KeyUserID, p.UserID),
		eventlog.T(KeyEventType, TypeUserRegistered),
	}
}

func LoggedInTags(p UserLoggedIn) []eventlog.Tag {
	return []eventlog.Tag{
		eventlog.T(KeyUsername, p.Username),
		eventlog.T(KeyDomain, DomainLogin),
		eventlog.T(KeyEventType, TypeUserLoggedIn),
	}
}

func ProfileUpdatedTags(p ProfileUpdated) []eventlog.Tag {
	return []eventlog.Tag{
		eventlog.T(KeyUserID, p.UserID),
		eventlog.T(KeyDomain, DomainProfile),
		eventlog.T(KeyEventType, TypeProfileUpdated),
	}
}

// VerificationSentTags indexa el envío por el hash del token para que
// verify-email pueda encontrarlo sin guardar el token en claro.
func VerificationSentTags(p VerificationEmailSent, tokenHash string) []eventlog.Tag {
	return []eventlog.Tag{
		eventlog.T(KeyUserID, p.UserID),
		eventlog.T(KeyEmail, p.Email),
		eventlog.T(KeyDomain, DomainVerification),
		eventlog.T(KeyVerificationToken, tokenHash),
		eventlog.T(KeySourceEvent, p.SourceEvent),
		eventlog.T(KeyEventType, TypeVerificationEmailSent),
	}
}

func VerificationFailedTags(p VerificationEmailFailed) []eventlog.Tag {
	return []eventlog.Tag{
		eventlog.T(KeyUserID, p.UserID),
		eventlog.T(KeyEmail, p.Email),
		eventlog.T(KeyDomain, DomainVerification),
		eventlog.T(KeySourceEvent, p.SourceEvent),
		eventlog.T(KeyStatus, StatusFailed),
		eventlog.T(KeyEventType, TypeVerificationEmailFailed),
	}
}

func EmailVerifiedTags(p EmailVerified) []eventlog.Tag {
	return []eventlog.Tag{
		eventlog.T(KeyUserID, p.UserID),
		eventlog.T(KeyEmail, p.Email),
		eventlog.T(KeyDomain, DomainVerification),
		eventlog.T(KeyEventType, TypeEmailVerified),
	}
}

// Queries de uso frecuente.

// RegistrationsQuery selecciona los registros que disparan el email de verificación.
func RegistrationsQuery() eventlog.Query {
	return eventlog.Match(
		eventlog.T(KeyDomain, DomainRegistration),
		eventlog.T(KeyEventType, TypeUserRegistered),
	)
}

// VerificationOutcomeQuery selecciona el resultado (envío o fallo) para un
// evento de registro. Es el marcador de idempotencia del projector.
func VerificationOutcomeQuery(sourceEventID string) eventlog.Query {
	return eventlog.Match(
		eventlog.T(KeyDomain, DomainVerification),
		eventlog.T(KeySourceEvent, sourceEventID),
	)
}

// VerificationByTokenQuery busca el envío asociado a un hash de token.
func VerificationByTokenQuery(tokenHash string) eventlog.Query {
	return eventlog.Match(
		eventlog.T(KeyDomain, DomainVerification),
		eventlog.T(KeyVerificationToken, tokenHash),
		eventlog.T(KeyEventType, TypeVerificationEmailSent),
	)
}

// UserHistoryQuery devuelve todo lo indexado por userId o username.
func UserHistoryQuery(userID, username string) eventlog.Query {
	return eventlog.NewQuery(
		eventlog.NewTagGroup(eventlog.T(KeyUserID, userID)),
		eventlog.NewTagGroup(eventlog.T(KeyUsername, username)),
	)
}
