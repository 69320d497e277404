// Package onboard orchestrates a multi-step employee onboarding process:
// each step either collects human input, calls an external provider or
// waits for an asynchronous callback (document signed, training completed).
//
// The engine executes a single linear workflow definition and comes with
// pluggable service layers:
//
//   - registry - static, ordered step chain with typed actions
//   - engine   - activation, suspension and per-step failure tracking
//   - callback - idempotent resumption from external webhooks
//   - gateway  - boundary to the document, directory and training providers
//
// The package is designed to be embedded in host applications. End-users
// typically interact via the high-level Service façade exposed by the root
// package:
//
//	srv, _ := onboard.New(onboard.WithGateway(gw))
//	proc, _ := srv.Engine().Start(ctx, intake, actor)
//	_, _ = srv.Resolver().ResolveDocumentCallback(ctx, proc.ID, subID, url)
//
// For more details see the individual sub-packages.
package onboard
