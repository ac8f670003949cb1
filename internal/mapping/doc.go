// Package mapping provides the YAML enricher profile: its schema, parsing,
// validation, and the builders that turn a profile into the engine's parts.
//
// A profile pins everything one lookup service needs: which local attributes
// map to which service parameters, how multi-valued strings are joined, which
// kinds the local store expects, and which follow-up lookups run after the
// primary one.
//
// # Schema Overview
//
//	version: "1"
//	# bidirectional aliases, local name: service name
//	121:
//	  BOOK:title: title
//	  BOOK:authors: author_name
//	# aliases with an explicit direction
//	aliases:
//	  - SEN:NAME -> q
//	  - bio -> BOOK:author_bio
//	  - {source: BOOK:isbn, target: isbn, bidirectional: true}
//	delimiter: ";"
//	types:
//	  application/pdf:
//	    BOOK:year: int32
//	extensions:
//	  .pdf: application/pdf
//	service:
//	  search: https://openlibrary.org/search.json
//	  candidates: docs
//	  title_field: BOOK:title
//	  selector: closest_title
//	secondary:
//	  - name: cover
//	    kind: bytes
//	    url: https://covers.openlibrary.org/b/id/$key-$size.jpg
//	    key_field: OPENLIB:cover_key
//	    bindings: {size: M}
//	    target_field: BOOK:cover
//	placeholder_titles: [Untitled]
//	http:
//	  timeout: 3s
//	  rate_limit: 1
//
// # Alias Order
//
// The 121 entries are added first, sorted by local name, followed by the
// aliases list in file order. When two aliases claim the same reverse name
// the first one wins and the table records a warning.
package mapping
