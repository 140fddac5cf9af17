// Package aimage provides a small image store addressed by opaque identifiers.
//
// Clients upload binary image payloads, receive a generated identifier, and later
// read, list, or delete the stored image by that identifier. The package owns the
// mapping from identifier to stored bytes; backends decide where the bytes live.
//
// # Key Components
//
//   - Identifier: canonical 32 character upper-case hex token (UUIDv4 without hyphens)
//   - MediaTypeValidator: allow-set check for declared upload media types
//   - ImageService: create/read/delete/list with collision and not-found semantics
//   - Backend: atomic-publish storage interface (filesystem, memory, badger, sqlite, postgres)
//   - CredentialVerifier: HTTP Basic credential check for the access gate
//
// # Identifiers
//
// Identifiers are accepted in any surface syntax (hyphenated, lower-case) and are
// always normalized before lookup, so "a1b2c3d4-e5f6-4a7b-8c9d-0e1f2a3b4c5d" and
// "A1B2C3D4E5F64A7B8C9D0E1F2A3B4C5D" address the same image.
//
// # Example Usage
//
//	validator, err := aimage.NewMediaTypeValidator(aimage.DefaultAllowedSubtypes)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	service := aimage.NewImageService(backend, validator, aimage.ServiceConfig{})
//
//	id, err := service.Create(ctx, pngBytes, "image/png")
//	content, err := service.Read(ctx, id.String())
//	err = service.Delete(ctx, id.String())
//
// See the http package for the REST API and the filesystem, badgerstore and
// database packages for backend implementations.
package aimage
