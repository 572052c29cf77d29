package parser

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/mudcontext-mcp/pkg/types"
)

const buttonSource = `using Microsoft.AspNetCore.Components;
using Microsoft.AspNetCore.Components.Web;

namespace MudBlazor
{
    /// <summary>
    /// A Material Design button.
    /// </summary>
    /// <remarks>
    /// See <see cref="MudIconButton"/> for icon-only buttons.
    /// </remarks>
    public partial class MudButton : MudBaseButton, IHandleEvent
    {
        /// <summary>
        /// The color of the button.
        /// </summary>
        [Parameter]
        [Category(CategoryTypes.Button.Appearance)]
        public Color Color { get; set; } = Color.Default;

        /// <summary>
        /// The text shown on the button.
        /// </summary>
        [Parameter, EditorRequired]
        public string Label { get; set; }

        [CascadingParameter]
        public bool Disabled { get; set; }

        /// <summary>
        /// Occurs when the button is clicked.
        /// </summary>
        [Parameter]
        public EventCallback<MouseEventArgs> OnClick { get; set; }

        [Parameter]
        public EventCallback Changed { get; set; }

        public string NotAParameter { get; set; }

        private int _count;

        /// <summary>
        /// Focuses the button.
        /// </summary>
        public async Task FocusAsync()
        {
            await Task.CompletedTask;
        }

        public Task OpenAsync()
        {
            return Task.CompletedTask;
        }

        public void SetText(string text, int count)
        {
        }

        public static void Helper()
        {
        }

        protected override void OnInitialized()
        {
        }

        public override string ToString() => "";
    }
}
`

func writeSource(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func parseButton(t *testing.T) *types.ParseResult {
	t.Helper()
	path := writeSource(t, "MudButton.razor.cs", buttonSource)
	result, err := New().ParseComponentFile(context.Background(), path)
	require.NoError(t, err)
	require.NotNil(t, result)
	return result
}

func TestParseComponentFileClass(t *testing.T) {
	result := parseButton(t)

	assert.Equal(t, "MudButton", result.ClassName)
	assert.Equal(t, "MudBlazor", result.Namespace)
	assert.Equal(t, "MudBaseButton", result.BaseType)
	assert.Equal(t, "A Material Design button.", result.Summary)
	assert.Equal(t, "See MudIconButton for icon-only buttons.", result.Remarks)
	assert.Equal(t, "MudButton.razor.cs", filepath.Base(result.FilePath))
}

func TestParseComponentFileParameters(t *testing.T) {
	result := parseButton(t)

	require.Len(t, result.Parameters, 3)
	byName := make(map[string]types.ComponentParameter)
	for _, p := range result.Parameters {
		byName[p.Name] = p
	}

	color := byName["Color"]
	assert.Equal(t, "Color", color.Type)
	assert.Equal(t, "The color of the button.", color.Description)
	assert.Equal(t, "Color.Default", color.DefaultValue)
	assert.Equal(t, "Appearance", color.Category)
	assert.False(t, color.IsRequired)
	assert.False(t, color.IsCascading)

	label := byName["Label"]
	assert.Equal(t, "string", label.Type)
	assert.True(t, label.IsRequired)
	assert.Empty(t, label.DefaultValue)

	disabled := byName["Disabled"]
	assert.True(t, disabled.IsCascading)
	assert.Equal(t, "bool", disabled.Type)

	_, ok := byName["NotAParameter"]
	assert.False(t, ok)
	_, ok = byName["OnClick"]
	assert.False(t, ok, "events are not duplicated as parameters")
}

func TestParseComponentFileEvents(t *testing.T) {
	result := parseButton(t)

	require.Len(t, result.Events, 2)
	assert.Equal(t, "OnClick", result.Events[0].Name)
	assert.Equal(t, "MouseEventArgs", result.Events[0].EventArgsType)
	assert.Equal(t, "Occurs when the button is clicked.", result.Events[0].Description)
	assert.Equal(t, "Changed", result.Events[1].Name)
	assert.Empty(t, result.Events[1].EventArgsType)
}

func TestParseComponentFileMethods(t *testing.T) {
	result := parseButton(t)

	var names []string
	for _, m := range result.Methods {
		names = append(names, m.Name)
	}
	assert.Equal(t, []string{"FocusAsync", "OpenAsync", "SetText"}, names)

	focus := result.Methods[0]
	assert.True(t, focus.IsAsync)
	assert.Equal(t, "Task", focus.ReturnType)
	assert.Equal(t, "Focuses the button.", focus.Description)
	assert.Empty(t, focus.Parameters)

	assert.True(t, result.Methods[1].IsAsync, "Task return implies async")

	setText := result.Methods[2]
	assert.False(t, setText.IsAsync)
	assert.Equal(t, "void", setText.ReturnType)
	assert.Equal(t, []types.MethodParameter{
		{Name: "text", Type: "string"},
		{Name: "count", Type: "int"},
	}, setText.Parameters)
}

func TestParseComponentFileScopedNamespace(t *testing.T) {
	src := `namespace MudBlazor.Extras;

public static class ChipHelpers
{
}

/// <summary>A compact element.</summary>
public class MudChip<T> : MudComponentBase<T>, IDisposable
{
    [Parameter]
    public T Value { get; set; }
}
`
	path := writeSource(t, "MudChip.razor.cs", src)
	result, err := New().ParseComponentFile(context.Background(), path)
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, "MudChip", result.ClassName)
	assert.Equal(t, "MudBlazor.Extras", result.Namespace)
	assert.Equal(t, "MudComponentBase", result.BaseType)
	assert.Equal(t, "A compact element.", result.Summary)
	require.Len(t, result.Parameters, 1)
	assert.Equal(t, "T", result.Parameters[0].Type)
}

func TestParseComponentFileNoPublicClass(t *testing.T) {
	src := `namespace MudBlazor
{
    internal class Hidden
    {
    }

    public static class Extensions
    {
    }
}
`
	path := writeSource(t, "Hidden.cs", src)
	result, err := New().ParseComponentFile(context.Background(), path)
	assert.NoError(t, err)
	assert.Nil(t, result)
}

func TestParseComponentFileInterfaceOnlyBases(t *testing.T) {
	src := `namespace MudBlazor
{
    public class MudFocusTrap : IDisposable, IAsyncDisposable
    {
    }
}
`
	path := writeSource(t, "MudFocusTrap.razor.cs", src)
	result, err := New().ParseComponentFile(context.Background(), path)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Empty(t, result.BaseType)
	assert.Empty(t, result.Parameters)
	assert.Empty(t, result.Methods)
}

func TestParseComponentFileMissing(t *testing.T) {
	_, err := New().ParseComponentFile(context.Background(), filepath.Join(t.TempDir(), "missing.cs"))
	assert.Error(t, err)
}

func TestParseConcurrent(t *testing.T) {
	p := New()
	path := writeSource(t, "MudButton.razor.cs", buttonSource)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := p.ParseComponentFile(context.Background(), path)
			assert.NoError(t, err)
			if assert.NotNil(t, result) {
				assert.Equal(t, "MudButton", result.ClassName)
			}
		}()
	}
	wg.Wait()
}

func TestSplitAttribute(t *testing.T) {
	tests := []struct {
		in, name, args string
	}{
		{"Parameter", "Parameter", ""},
		{"ParameterAttribute", "Parameter", ""},
		{"Category(CategoryTypes.Button.Behavior)", "Category", "CategoryTypes.Button.Behavior"},
		{"Microsoft.AspNetCore.Components.Parameter", "Parameter", ""},
	}
	for _, tt := range tests {
		name, args := splitAttribute(tt.in)
		assert.Equal(t, tt.name, name, tt.in)
		assert.Equal(t, tt.args, args, tt.in)
	}
}

func TestBaseClass(t *testing.T) {
	assert.Equal(t, "MudBaseInput", baseClass([]string{"MudBaseInput<T>", "IMudSelect"}))
	assert.Equal(t, "ComponentBase", baseClass([]string{"IDisposable", "ComponentBase"}))
	assert.Equal(t, "Item", baseClass([]string{"Item"}), "single capital I is not an interface")
	assert.Empty(t, baseClass([]string{"IDisposable"}))
	assert.Empty(t, baseClass(nil))
}

func TestEventArgsType(t *testing.T) {
	args, ok := eventArgsType("EventCallback<MouseEventArgs>")
	assert.True(t, ok)
	assert.Equal(t, "MouseEventArgs", args)

	args, ok = eventArgsType("EventCallback")
	assert.True(t, ok)
	assert.Empty(t, args)

	_, ok = eventArgsType("Func<Task>")
	assert.False(t, ok)
}

func TestParseXMLDoc(t *testing.T) {
	doc := parseXMLDoc("<summary>\nUses <see cref=\"T:MudBlazor.Color\"/> values.\n</summary>\n<remarks>Defaults to <c>Primary</c>.</remarks>")
	assert.Equal(t, "Uses Color values.", doc.summary)
	assert.Equal(t, "Defaults to Primary.", doc.remarks)

	assert.Equal(t, "Plain text.", parseXMLDoc("Plain text.").summary)
	assert.Empty(t, parseXMLDoc("").summary)
	assert.Empty(t, parseXMLDoc("<param name=\"x\">value</param>").summary)
}
