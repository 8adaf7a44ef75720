// SPDX-License-Identifier: Apache-2.0

// Package resolve maps a form submission's answers onto canonical field
// names.
//
// Question labels are normalized into slugs (Normalizer), each canonical
// name is looked up through the DIRECT, TITLE and FUZZY tiers (Resolver),
// and the winning answer's payload is reduced to a plain value
// (ExtractValue). Resolve is pure: it performs no I/O and keeps no state
// between calls. Pipeline adds provider payload parsing and logging on top.
package resolve
