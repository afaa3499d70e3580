// Package validator builds declarative validation from small Rule values.
//
// Each helper returns a Rule pairing a Check with the ValidationError to report
// when it fails. Apply runs every rule and returns the failures together as
// ValidationErrors, which implements error:
//
//	err := validator.Apply(
//		validator.Required("playerName", name),
//		validator.MaxRunes("playerName", name, 32),
//		validator.Between("level", level, 1, 10),
//	)
//	if verrs := validator.ExtractValidationErrors(err); verrs != nil {
//		// report verrs.Fields() back to the client
//	}
//
// Rules are evaluated eagerly and hold no state, so they are safe to build
// per request.
package validator
