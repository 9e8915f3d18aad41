// Copyright 2026 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Package mdx resolves operator-supplied configuration from the GCE
// instance metadata service.
package mdx

import (
	"context"
	"strings"

	"cloud.google.com/go/compute/metadata"
)

// Unset is the sentinel default for attributes the operator must supply.
// Callers compare the resolved value against Unset to detect a missing
// required attribute.
const Unset = "UNSET"

// Resolver resolves instance attribute values.
type Resolver interface {
	// Value returns the attribute named by key, or fallback if the
	// attribute is absent or cannot be read.
	Value(ctx context.Context, key, fallback string) string
}

// AttributeResolver resolves attributes against the instance metadata
// service of the current node.
type AttributeResolver struct {
	client *metadata.Client
}

// NewAttributeResolver creates an AttributeResolver. A nil client uses the
// default metadata transport.
func NewAttributeResolver(client *metadata.Client) *AttributeResolver {
	if client == nil {
		client = metadata.NewClient(nil)
	}
	return &AttributeResolver{client: client}
}

// Value returns the instance attribute named by key. Any failure to read
// the attribute, including an unreachable metadata service, yields the
// fallback.
func (r *AttributeResolver) Value(ctx context.Context, key, fallback string) string {
	val, err := r.client.InstanceAttributeValueWithContext(ctx, key)
	if err != nil {
		return fallback
	}
	if val = strings.TrimSpace(val); val == "" {
		return fallback
	}
	return val
}

var _ Resolver = &AttributeResolver{}
