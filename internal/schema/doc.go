// Package schema composes table descriptions for an interleaved,
// schema-rigid table store.
//
// A Schema is built once per model by Compose and never changes afterwards.
// Composition resolves, in order:
//
//  1. Field collection - local fields plus deep copies from base schemas
//  2. Primary key resolution - declared, or inherited from exactly one base
//  3. Index inheritance - base indices copied unless SkipIndexInheritance
//  4. Interleaving - parent primary key fields copied and prepended
//  5. Validation - table name, primary key and index columns
//
// All failures are returned from Compose as *ModelError, *FieldError or
// *IndexError so a broken model never reaches the query builder.
//
// Fields carry a declaration order assigned by a process-wide counter when
// they are constructed. Composed schemas list fields in that order, which
// keeps layout stable across inheritance copies: parent key fields are
// always declared before the child's own fields.
package schema
