// Copyright 2026 The Arctic Authors
// SPDX-License-Identifier: MIT

package fieldtree

import (
	"fmt"

	jsonv2 "github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/tailscale/hujson"
)

// ParseTree parses a three-channel description.
// The description is JWCC (JSON with comments and trailing commas).
func ParseTree(data []byte) (*Tree, error) {
	t := new(Tree)
	if err := unmarshalJWCC(data, t); err != nil {
		return nil, fmt.Errorf("parse tree: %v", err)
	}
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("parse tree: %v", err)
	}
	return t, nil
}

// ParseNode parses a single-channel description.
// The description is JWCC (JSON with comments and trailing commas).
func ParseNode(data []byte) (*Node, error) {
	n := new(Node)
	if err := unmarshalJWCC(data, n); err != nil {
		return nil, fmt.Errorf("parse node: %v", err)
	}
	if err := n.Validate(); err != nil {
		return nil, fmt.Errorf("parse node: %v", err)
	}
	return n, nil
}

// ParseDescription parses either a three-channel or a single-channel description.
// A top-level object with an "op" member is a single-channel description.
// Exactly one of the returned tree and node is non-nil on success.
func ParseDescription(data []byte) (*Tree, *Node, error) {
	jsonData, err := hujson.Standardize(data)
	if err != nil {
		return nil, nil, fmt.Errorf("parse description: %v", err)
	}
	var members map[string]jsontext.Value
	if err := jsonv2.Unmarshal(jsonData, &members); err != nil {
		return nil, nil, fmt.Errorf("parse description: %v", err)
	}
	if _, isNode := members["op"]; isNode {
		n, err := ParseNode(jsonData)
		if err != nil {
			return nil, nil, err
		}
		return nil, n, nil
	}
	t, err := ParseTree(jsonData)
	if err != nil {
		return nil, nil, err
	}
	return t, nil, nil
}

func unmarshalJWCC(data []byte, v any) error {
	jsonData, err := hujson.Standardize(data)
	if err != nil {
		return err
	}
	return jsonv2.Unmarshal(jsonData, v, jsonv2.RejectUnknownMembers(true))
}

// MarshalTree returns the indented JSON description of t.
func MarshalTree(t *Tree) ([]byte, error) {
	data, err := jsonv2.Marshal(t, jsontext.Multiline(true))
	if err != nil {
		return nil, fmt.Errorf("marshal tree: %v", err)
	}
	return data, nil
}

// MarshalNode returns the indented JSON description of n.
func MarshalNode(n *Node) ([]byte, error) {
	data, err := jsonv2.Marshal(n, jsontext.Multiline(true))
	if err != nil {
		return nil, fmt.Errorf("marshal node: %v", err)
	}
	return data, nil
}
