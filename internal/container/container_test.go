package container

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type widget struct {
	Value int
}

type consumer struct {
	Widget *widget `inject:"widget"`
}

func TestContainerProvideWithNamePopulatesInjectedField(t *testing.T) {
	c := NewContainer()
	w := &widget{Value: 7}
	cons := &consumer{}

	require.NoError(t, c.ProvideWithName("widget", w))
	require.NoError(t, c.ProvideWithName("consumer", cons))
	require.NoError(t, c.Populate())

	require.NotNil(t, cons.Widget)
	assert.Equal(t, 7, cons.Widget.Value)
}

func TestContainerProvideRejectsNilBean(t *testing.T) {
	c := NewContainer()
	assert.Error(t, c.Provide(nil))
}

func TestContainerProvideWithNameRejectsNilBean(t *testing.T) {
	c := NewContainer()
	assert.Error(t, c.ProvideWithName("nope", nil))
}

func TestContainerPopulateFailsOnMissingDependency(t *testing.T) {
	c := NewContainer()
	cons := &consumer{}
	require.NoError(t, c.ProvideWithName("consumer", cons))
	assert.Error(t, c.Populate())
}
