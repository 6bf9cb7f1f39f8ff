// Package services defines the error taxonomy and context helpers shared by the
// metadata client, the query resolver, and the browsing surfaces.
//
// Key responsibilities:
//   - Structured error markers plus the Wrap helper so failures carry the
//     component and operation that produced them.
//   - Classify, which reduces any error to a stable label used in log fields
//     and metric labels.
//   - Context helpers that stamp resolution correlation identifiers and the
//     active query for logging.
package services
