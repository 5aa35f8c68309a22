// Package google provides OAuth2 authentication for the Gmail API.
//
// Two credential sources are supported. Headless scheduler runs read a full
// authorized-user credential from the GOOGLE_CREDENTIALS environment
// variable. Interactive CLI use exchanges an authorization code once and
// caches the resulting token pair on disk per account.
package google
