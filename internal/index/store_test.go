package index

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/mudcontext-mcp/pkg/types"
)

func component(name string) *types.ComponentEntity {
	return &types.ComponentEntity{
		Name:      name,
		Namespace: "MudBlazor",
		Summary:   name + " summary",
		Parameters: []types.ComponentParameter{
			{Name: "Color", Type: "Color"},
		},
	}
}

func TestPutAndGetComponentCaseInsensitive(t *testing.T) {
	store := New()
	store.PutComponent(component("MyButton"))

	for _, name := range []string{"mybutton", "MyButton", "MYBUTTON"} {
		got, ok := store.GetComponent(name)
		require.True(t, ok, name)
		assert.Equal(t, "MyButton", got.Name)
	}

	_, ok := store.GetComponent("MyButtons")
	assert.False(t, ok)
}

func TestPutComponentPreservesFirstCasing(t *testing.T) {
	store := New()
	store.PutComponent(component("MudButton"))

	replacement := component("MUDBUTTON")
	replacement.Summary = "replaced"
	store.PutComponent(replacement)

	assert.Equal(t, 1, store.Len())
	got, ok := store.GetComponent("mudbutton")
	require.True(t, ok)
	assert.Equal(t, "MudButton", got.Name)
	assert.Equal(t, "replaced", got.Summary)
}

func TestGetComponentReturnsCopy(t *testing.T) {
	store := New()
	store.PutComponent(component("MudButton"))

	got, _ := store.GetComponent("MudButton")
	got.Summary = "mutated"
	got.Parameters[0].Name = "mutated"

	again, _ := store.GetComponent("MudButton")
	assert.Equal(t, "MudButton summary", again.Summary)
	assert.Equal(t, "Color", again.Parameters[0].Name)
}

func TestPutComponentCopiesInput(t *testing.T) {
	store := New()
	c := component("MudButton")
	store.PutComponent(c)

	c.Summary = "mutated after put"

	got, _ := store.GetComponent("MudButton")
	assert.Equal(t, "MudButton summary", got.Summary)
}

func TestAllComponentsInsertionOrder(t *testing.T) {
	store := New()
	for _, name := range []string{"Gamma", "Alpha", "Beta"} {
		store.PutComponent(component(name))
	}
	store.PutComponent(component("alpha"))

	var names []string
	for _, c := range store.AllComponents() {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"Gamma", "Alpha", "Beta"}, names)
	assert.Equal(t, names, store.ComponentNames())
}

func TestPutComponentIgnoresEmpty(t *testing.T) {
	store := New()
	store.PutComponent(nil)
	store.PutComponent(&types.ComponentEntity{})
	assert.Equal(t, 0, store.Len())
}

func TestUpdateComponent(t *testing.T) {
	store := New()
	store.PutComponent(component("MudButton"))

	t.Run("existing", func(t *testing.T) {
		ok := store.UpdateComponent("mudbutton", func(c *types.ComponentEntity) *types.ComponentEntity {
			c.Description = "A button"
			c.RelatedComponents = []string{"MudIconButton"}
			return c
		})
		require.True(t, ok)

		got, _ := store.GetComponent("MudButton")
		assert.Equal(t, "A button", got.Description)
		assert.Equal(t, []string{"MudIconButton"}, got.RelatedComponents)
		assert.Equal(t, "MudButton summary", got.Summary)
	})

	t.Run("missing does not create", func(t *testing.T) {
		called := false
		ok := store.UpdateComponent("MudGhost", func(c *types.ComponentEntity) *types.ComponentEntity {
			called = true
			return c
		})
		assert.False(t, ok)
		assert.False(t, called)
		assert.Equal(t, 1, store.Len())
	})

	t.Run("rename is ignored", func(t *testing.T) {
		store.UpdateComponent("MudButton", func(c *types.ComponentEntity) *types.ComponentEntity {
			c.Name = "Other"
			return c
		})
		_, ok := store.GetComponent("MudButton")
		assert.True(t, ok)
		_, ok = store.GetComponent("Other")
		assert.False(t, ok)
	})
}

func TestAPIReferences(t *testing.T) {
	store := New()
	store.PutAPIReference(&types.ApiReferenceEntity{
		Name: "MudButton",
		Members: []types.ApiMember{
			{Name: "Color", MemberType: types.MemberProperty, ReturnType: "Color"},
		},
	})

	ref, ok := store.GetAPIReference("MUDBUTTON")
	require.True(t, ok)
	assert.Equal(t, "MudButton", ref.Name)
	require.Len(t, ref.Members, 1)

	ref.Members[0].Name = "mutated"
	again, _ := store.GetAPIReference("MudButton")
	assert.Equal(t, "Color", again.Members[0].Name)

	assert.Equal(t, 0, store.Len(), "API references are stored independently")
}

func TestResetAndVersion(t *testing.T) {
	store := New()
	v0 := store.Version()

	store.PutComponent(component("A"))
	v1 := store.Version()
	assert.Greater(t, v1, v0)

	store.PutAPIReference(&types.ApiReferenceEntity{Name: "A"})
	v2 := store.Version()
	assert.Greater(t, v2, v1)

	store.Reset()
	assert.Greater(t, store.Version(), v2)
	assert.Equal(t, 0, store.Len())
	_, ok := store.GetAPIReference("A")
	assert.False(t, ok)
}

func TestReplace(t *testing.T) {
	live := New()
	live.PutComponent(component("Old"))
	live.PutAPIReference(&types.ApiReferenceEntity{Name: "Old"})
	before := live.Version()

	staging := New()
	staging.PutComponent(component("New"))
	staging.PutComponent(component("Newer"))
	staging.PutAPIReference(&types.ApiReferenceEntity{Name: "New"})

	live.Replace(staging)

	assert.Greater(t, live.Version(), before)
	assert.Equal(t, []string{"New", "Newer"}, live.ComponentNames())
	_, ok := live.GetComponent("Old")
	assert.False(t, ok)
	_, ok = live.GetAPIReference("Old")
	assert.False(t, ok)
	_, ok = live.GetAPIReference("new")
	assert.True(t, ok)

	assert.Equal(t, 0, staging.Len(), "source is emptied")

	// entries moved over stay independent of the emptied source
	staging.PutComponent(component("New"))
	assert.Equal(t, 2, live.Len())

	live.Replace(live)
	assert.Equal(t, 2, live.Len())
}

func TestConcurrentReadersAndWriter(t *testing.T) {
	store := New()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			store.PutComponent(component(fmt.Sprintf("Comp%d", i)))
			store.UpdateComponent(fmt.Sprintf("Comp%d", i), func(c *types.ComponentEntity) *types.ComponentEntity {
				c.Examples = []types.ComponentExample{{Name: "Basic", Features: []string{"Variants"}}}
				return c
			})
		}
	}()

	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				for _, c := range store.AllComponents() {
					// An entity is either pre- or post-update, never torn
					if len(c.Examples) > 0 {
						assert.Equal(t, "Basic", c.Examples[0].Name)
					}
				}
				store.GetComponent(fmt.Sprintf("comp%d", i))
			}
		}()
	}

	wg.Wait()
	assert.Equal(t, 200, store.Len())
}
