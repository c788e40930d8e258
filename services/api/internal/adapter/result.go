// Package adapter is the only boundary talking to the pro backend. Every
// operation answers a Result and never returns an error to its caller.
package adapter

// Result is the uniform answer of an adapter. On failure Payload holds the
// operation's fallback value and Message a user-facing explanation;
// FieldErrors maps form fields to backend validation messages.
type Result[T any] struct {
	IsOk        bool              `json:"isOk"`
	Message     string            `json:"message,omitempty"`
	Payload     T                 `json:"payload"`
	FieldErrors map[string]string `json:"fieldErrors,omitempty"`
}

func success[T any](payload T, msg string) Result[T] {
	return Result[T]{IsOk: true, Message: msg, Payload: payload}
}

func failure[T any](payload T, msg string) Result[T] {
	return Result[T]{IsOk: false, Message: msg, Payload: payload}
}

const (
	GetDataErrorMessage  = "Nous avons rencontré un problème lors de la récupération des données."
	SentDataErrorMessage = "Une erreur est survenue lors de la sauvegarde de vos modifications.\n Merci de réessayer plus tard"
	FormErrorMessage     = "Une ou plusieurs erreurs sont présentes dans le formulaire"
	PatchSuccessMessage  = "Vos modifications ont bien été enregistrées"

	getOfferErrorMessage    = "Une erreur est survenue lors de la récupération de votre offre"
	listOffersErrorMessage  = "Nous avons rencontré un problème lors du chargemement des données"
	deleteDraftErrorMessage = "Une erreur est survenue lors de la suppression du brouillon"
	publishErrorMessage     = "Une erreur s’est produite, veuillez réessayer ultérieurement"
	imageErrorMessage       = "Une erreur est survenue lors de l’envoi de votre image"
	unknownFormMessage      = "Ce formulaire n’est pas reconnu"
)
