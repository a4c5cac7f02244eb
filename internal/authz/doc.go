// Comicrec - Comic Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/comicrec

/*
Package authz applies role-based access control to authenticated routes
with casbin.

Every authenticated caller holds the user role. Callers whose token email is
listed in CATALOG_EDITORS also hold editor, which inherits user and adds
creating comics. The embedded policy:

	p, user,   /api/v1/ratings,           ^(read|write)$
	p, user,   /api/v1/ratings/:comic_id, ^read$
	p, user,   /api/v1/recommendations,   ^read$
	p, editor, /api/v1/comics,            ^write$
	g, editor, user

Objects are matched with keyMatch2, actions with regexMatch. GET and HEAD
are read; POST, PUT, PATCH and DELETE are write.

Authorization is off unless AUTHZ_ENABLED=true, which requires AUTH_MODE=jwt.
*/
package authz
