/*
Package http implements the portfolio REST API handlers.

Public routes return raw payloads (a project page, a project, a list, the
category listing); mutating routes return the success envelope from package
response. Service errors are mapped to status codes in one place, fail,
so every handler reports NOT_FOUND, VALIDATION_ERROR, UNAUTHORIZED and
INTERNAL_ERROR the same way.

	h := http.NewHandlers(http.Deps{Projects: projects, Contacts: contacts, ...})
	h.Register(router.Group("/api"))
*/
package http
