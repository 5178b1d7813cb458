// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package services adapts Marquee components to suture.Service.

HTTPServerService translates the blocking ListenAndServe pattern into
Serve(ctx) with graceful Shutdown on cancellation. MemoGCService
periodically reclaims badger value log space in the embedding memo store.

Every wrapper implements fmt.Stringer so suture events name the service.
*/
package services
