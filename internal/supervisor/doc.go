// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package supervisor runs Marquee's long-lived services under a suture v4
supervisor tree.

	RootSupervisor ("marquee")
	├── DataSupervisor ("data-layer")
	│   └── MemoGCService (if EMBEDDING_MEMO_PATH is set)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

The engine itself is built before the tree starts and is immutable
afterwards, so it is not a supervised service. Crashed services are
restarted with suture's backoff; supervisor events are logged through
sutureslog into the zerolog-backed slog handler from the logging package.

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	return tree.Serve(ctx)
*/
package supervisor
