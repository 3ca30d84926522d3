// Package httpapp provides the HTTP server for Slashboard.
//
//	@title						Slashboard API
//	@version					1.0
//	@description				Threaded discussion boards with paginated feeds, comment trees and per-viewer votes.
//	@description
//	@description				Reads are open to everyone; a bearer token only adds the viewer's votes.
//	@description				Writes need a token from POST /api/auth/verify or POST /api/accounts.
//	@BasePath					/
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Type "Bearer" followed by a space and the access token.
package httpapp
