// Package commands builds management protocol requests.
//
// Every builder takes an argument struct, validates it and returns a
// *Command, which satisfies protocol.Request. Missing mandatory arguments
// fail with *errors.RequiredArgumentError and values outside the protocol
// grammar with *errors.InvalidArgumentError; in both cases no request
// bytes are produced.
//
//	req, err := commands.StartTask(commands.TaskIDArgs{TaskID: id})
//	if err != nil {
//		return err
//	}
//	resp, err := session.Do(ctx, req)
package commands

import (
	"maps"
	"slices"
	"strconv"

	"github.com/beevik/etree"
)

// Command is a request element tree. The zero value is not usable; use
// the builders.
type Command struct {
	root *etree.Element
}

func newCommand(name string) *Command {
	return &Command{root: etree.NewElement(name)}
}

// Command returns the command name, which is the root element tag.
func (c *Command) Command() string {
	return c.root.Tag
}

// Bytes serializes the command.
func (c *Command) Bytes() []byte {
	doc := etree.NewDocument()
	doc.SetRoot(c.root.Copy())
	data, err := doc.WriteToBytes()
	if err != nil {
		// Writing to memory cannot fail.
		panic(err)
	}
	return data
}

// String returns the serialized command.
func (c *Command) String() string {
	return string(c.Bytes())
}

// Element returns the root element for additions the builders do not
// cover. Changes are reflected in later calls to Bytes.
func (c *Command) Element() *etree.Element {
	return c.root
}

// attr sets an attribute if value is not empty.
func (c *Command) attr(name, value string) *Command {
	if value != "" {
		c.root.CreateAttr(name, value)
	}
	return c
}

// flag sets a boolean attribute to 1 if v is true.
func (c *Command) flag(name string, v bool) *Command {
	if v {
		c.root.CreateAttr(name, "1")
	}
	return c
}

// child adds a text element under parent if text is not empty.
func child(parent *etree.Element, name, text string) *etree.Element {
	if text == "" {
		return nil
	}
	el := parent.CreateElement(name)
	el.SetText(text)
	return el
}

// ref adds an element referencing another resource by id.
func ref(parent *etree.Element, name, id string) *etree.Element {
	if id == "" {
		return nil
	}
	el := parent.CreateElement(name)
	el.CreateAttr("id", id)
	return el
}

func boolString(v bool) string {
	if v {
		return "1"
	}
	return "0"
}

func itoa(n int) string {
	return strconv.Itoa(n)
}

func sortedKeys(m map[string]string) []string {
	return slices.Sorted(maps.Keys(m))
}
