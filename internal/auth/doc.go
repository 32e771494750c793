// Package auth provides authentication and authorization for the bulletin board.
//
// # Authentication
//
// Service authenticates users against the local database. Passwords are stored as
// argon2id hashes and verified on a bounded pool of hash workers (Hasher), so a burst
// of logins cannot occupy every CPU serving requests. An unknown username, a wrong
// password and a deactivated account all produce ErrWrongCredentials.
//
// # Authorization
//
// Users belong to groups and groups are granted permissions:
//
//	users -> users_groups -> groups -> groups_permissions -> permissions
//
// PermissionsFor resolves the union of the permissions of all groups of an active user.
// Inactive users have no permissions at all. Permission sets are never cached across
// requests; within one request the Fiber middleware resolves them at most once.
//
// # Middleware
//
//   - Identify: turns the session user id into an Identity for the request
//   - RequireIdentity: the route needs a logged in user
//   - RequirePermission: the route needs a permission
//
// Example usage:
//
//	authService := auth.NewService(db, auth.NewHasher(cfg.Auth))
//
//	app.Use(auth.Identify(authService, sessions))
//	app.Get("/mod", auth.RequirePermission(authService, auth.PermAdminRead), handler)
package auth
