// Package loginsdk is the Go client of the headcount login service. It also
// carries the request and response types the server writes, so both sides
// share one definition of the wire format.
//
// Typical use:
//
//	c := loginsdk.NewClient("http://localhost:8080")
//	tok, err := c.Login(ctx, "Admin", "admin")
//	if err != nil {
//		return err
//	}
//	admin := c.WithToken(tok.AccessToken)
//	page, err := admin.ListCredentials(ctx, 50, 0)
package loginsdk
