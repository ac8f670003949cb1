// Package match scores how closely lookup candidates resemble a local title.
//
// Key functions:
//   - NormalizeTitle: folds file names and titles into comparable text
//   - Levenshtein: computes edit distance between strings, rune-wise
//   - TitleSimilarity: normalized similarity of two titles
//   - RankTitles: ranks candidate titles against a query
package match
