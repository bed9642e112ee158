package labels

import (
	"sort"
	"strings"
)

// Standard label keys. The seedmaster.io prefix keeps them apart from labels
// set by other tools.
const (
	keyPrefix = "seedmaster.io/"

	// KeyMaster identifies the master a resource belongs to
	KeyMaster = keyPrefix + "master"

	// KeyRole identifies the role of an instance
	KeyRole = keyPrefix + "role"

	// KeyManagedBy identifies the management system
	KeyManagedBy = keyPrefix + "managed-by"
)

// Role values
const (
	RoleMaster = "master"
)

// ManagedBySeedmaster is the KeyManagedBy value of every created resource.
const ManagedBySeedmaster = "seedmaster"

// LabelBuilder provides a fluent interface for building resource labels.
type LabelBuilder struct {
	labels map[string]string
}

// NewLabelBuilder creates a new label builder with the master name pre-set.
func NewLabelBuilder(masterName string) *LabelBuilder {
	return &LabelBuilder{
		labels: map[string]string{
			KeyMaster:    masterName,
			KeyManagedBy: ManagedBySeedmaster,
		},
	}
}

// ForMaster returns the labels of a master instance.
func ForMaster(masterName string) *LabelBuilder {
	return NewLabelBuilder(masterName).WithRole(RoleMaster)
}

// WithRole adds a role label.
func (lb *LabelBuilder) WithRole(role string) *LabelBuilder {
	lb.labels[KeyRole] = role
	return lb
}

// Merge adds all labels from the provided map.
func (lb *LabelBuilder) Merge(extra map[string]string) *LabelBuilder {
	for k, v := range extra {
		lb.labels[k] = v
	}
	return lb
}

// Build returns a copy of the labels map.
func (lb *LabelBuilder) Build() map[string]string {
	result := make(map[string]string, len(lb.labels))
	for k, v := range lb.labels {
		result[k] = v
	}
	return result
}

// Tags renders the labels as sorted "key:value" tags. The key prefix is
// dropped and characters tags do not allow are replaced with '-'.
func (lb *LabelBuilder) Tags() []string {
	tags := make([]string, 0, len(lb.labels))
	for k, v := range lb.labels {
		tags = append(tags, sanitizeTag(strings.TrimPrefix(k, keyPrefix))+":"+sanitizeTag(v))
	}
	sort.Strings(tags)
	return tags
}

// SelectorForMaster returns a label selector string for all resources of a master.
func SelectorForMaster(masterName string) string {
	return KeyMaster + "=" + masterName
}

func sanitizeTag(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, s)
}
