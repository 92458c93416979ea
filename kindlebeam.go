// Package kindlebeam sends readable web articles to a Kindle device.
// It captures a rendered page, extracts the main content with a
// readability algorithm, repairs the extractor's output by recovering
// structure the algorithm stripped (subheadings, the lead content image,
// inline link text), converts the result to EPUB and delivers it by
// email.
//
// This package contains domain types and interfaces following Ben
// Johnson's Standard Package Layout. Implementations live in
// subdirectories named after their primary dependency (e.g.
// readability/, rod/, epub/, smtp/, sqlite/). The structural repair
// algorithm lives in recovery/.
package kindlebeam
