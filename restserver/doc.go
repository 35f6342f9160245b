// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package restserver publishes a rule model as a web service.  The
// restclient package is a matching client.
//
// The JSON API is defined in the restdata package.  In particular,
// note that the URLs described here are not actually part of the
// API; clients should start from the root document.
//
// # HTTP Considerations
//
// Every resource answers both browsers and programs.  Requests
// default to a complete HTML page, with the result followed by input
// forms for the resource's operations.  Clients should use the
// standard HTTP Accept: header to request JSON instead, or add a
// "format=json" query parameter.
//
// Operations answer with HTTP 200 even when they fail for a reason
// the user can fix, such as a missing parameter or a malformed rule;
// the body describes the problem.  Only failures to understand the
// request itself (a bad Accept: header, an unreadable body) use HTTP
// error codes.
//
// HTML forms cannot send PUT, so a POST with a "_method" field is
// treated as that method.
//
// # MIME Types
//
// This interface understands MIME types as follows:
//
//	application/vnd.diffeo.rulesweb.v1+json
//
// JSON representation of version 1 of this interface.
//
//	application/vnd.diffeo.rulesweb+json
//	application/json
//	text/json
//
// JSON representation of latest version of this interface.
//
//	text/html
//	application/xhtml+xml
//
// HTML page.
//
// # URL Scheme
//
// The following URLs are defined:
//
//	/          GET: job status and links
//	/match     GET input: matching rules
//	/model     GET: serialized model; PUT rules: replace the model
//	/rules     GET: rule list; POST label, pattern: add a rule
package restserver
