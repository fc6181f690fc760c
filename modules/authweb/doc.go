// Package authweb exposes the authentication service over HTTP: JSON
// endpoints for credential and LINE sign-in, redirect endpoints for the
// OAuth providers, and the browser-facing OAuth callback route.
package authweb
