// Package agility plans runs over an agility course: which obstacles to take,
// in which order, so that the dog collects the most points and still reaches
// the finish inside the course time.
//
// The module is organized in three packages:
//
//   - course: points, obstacle types with their time and point tables,
//     obstacles with entry/exit and use limits, YAML loading and a bundled
//     example course.
//   - proximity: for every obstacle exit (or any point), all obstacles
//     ordered by distance to their entry.
//   - orienteer: the bounded depth-first branch-and-bound search with an
//     optional nearest-first opening, a time limit and parallel root
//     branches.
//
// The driver lives in cmd/agility and internal/:
//
//   - internal/config: AGILITY_* environment and .env settings.
//   - internal/metrics: Prometheus collectors for search runs.
//   - internal/obs: run ids and timing logs.
//
// Quick ASCII example:
//
//	S ──► Jump ──► Tire ──► [DogWalk] ──► F
//
// represents a run that takes three obstacles before the finish.
//
//	go run ./cmd/agility -bound 0.5
package agility
