// Package idlist enumerates the identifiers to download.
//
// Identifiers come from one of two sources:
//   - The RCSB search API, queried for every entry released before a
//     cutoff date (Client.EntriesBefore). Results are split into
//     pdb_ids_batch_N.txt files so a run can be resumed or repeated
//     without hitting the search service again.
//   - A SAbDab summary TSV file, whose first column holds the
//     identifiers (ReadSummary).
package idlist
