// Package examples extracts usage samples from the documentation sources.
//
// For a component named <prefix>Button the extractor reads every
// Button*Example.razor file under <docs root>/Button/Examples. Each file is
// split into markup and the @code block; a leading @* ... *@ comment becomes
// the description, and up to five feature tags (Variants, Colors, Two-way
// binding and so on) are detected from the markup.
package examples
