// Package gmail wraps the Gmail API for the digest engine.
//
// The client covers the three operations the engine needs: searching for
// message IDs with a sender/date query, fetching a message's subject and
// decoded body, and sending the digest email. Query construction lives in
// this package too, since the syntax is Gmail's.
package gmail
