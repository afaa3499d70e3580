// Package environment names the deployment environment a process runs in and
// carries it through request contexts so handlers and loggers can adapt.
//
//	env := environment.Parse(os.Getenv("APP_ENV"))
//	r.Use(environment.Middleware(env))
//
//	if environment.IsProduction(ctx) {
//		// hide internal error details
//	}
package environment
