/*
Package user contains core data structures related to user identity.

It defines the basic representation of an anonymous user within the pairing system
(the User struct), used for passing user information both internally and to clients.
*/
package user

// User represents the basic identity information of a chat participant.
// Fields use JSON tags for serialization in API responses and WebSocket messages.
type User struct {

	// ID is the unique identifier for the user, a server-minted UUID.
	ID string `json:"userId"`

	// Username is the display name of the user, generated or supplied on queue join.
	Username string `json:"username"`
}
