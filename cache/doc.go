// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package cache provides a small in-process LRU cache.  The web
// server uses it to remember match results; since a key includes the
// model generation, a changed model never serves stale matches and
// old entries simply age out.
package cache
