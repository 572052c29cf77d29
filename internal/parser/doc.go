// Package parser extracts component metadata from C# source files.
//
// Parsing uses the tree-sitter C# grammar. For each file the first public,
// non-static class is treated as the component:
//
//	p := parser.New()
//	result, err := p.ParseComponentFile(ctx, "src/MudBlazor/Components/Button/MudButton.razor.cs")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if result == nil {
//	    // no component class in this file
//	}
//
// # Extracted Members
//
// Properties marked [Parameter] or [CascadingParameter] become parameters,
// except EventCallback and EventCallback<T> properties which become events.
// [EditorRequired] marks a parameter required and [Category(...)] supplies
// its category. Public methods that are neither static nor overrides are
// recorded with their signature; a method is async when declared async or
// returning Task or ValueTask.
//
// Documentation comes from /// XML comments: <summary> and <remarks> with
// <see cref="..."/> references flattened to the referenced name.
//
// # Thread Safety
//
// A Parser holds no state. Each call creates its own tree-sitter parser, so
// one Parser may be shared across goroutines.
package parser
