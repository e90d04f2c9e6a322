// Copyright (C) 2025 Mono Technologies Inc.
//
// This program is free software; you can redistribute it and/or
// modify it under the terms of the GNU General Public License
// as published by the Free Software Foundation; version 2.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.

// Package compose assembles the docker compose project for the feeder stack.
package compose

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/we-are-mono/adsbfeed/state"
)

// NetworkName is the bridge network every service joins
const NetworkName = "adsb_net"

const header = "# Generated by adsbfeed. Manual edits are overwritten on the next build.\n"

// Network is a compose network definition
type Network struct {
	Driver string `yaml:"driver"`
}

// Service is one container definition. Field order is the emitted key order.
type Service struct {
	Name          string   `yaml:"-"`
	Image         string   `yaml:"image"`
	ContainerName string   `yaml:"container_name"`
	Hostname      string   `yaml:"hostname"`
	Restart       string   `yaml:"restart"`
	Networks      []string `yaml:"networks,omitempty"`
	DependsOn     []string `yaml:"depends_on,omitempty"`
	Ports         []string `yaml:"ports,omitempty"`
	Environment   []string `yaml:"environment,omitempty"`
	Devices       []string `yaml:"devices,omitempty"`
	Volumes       []string `yaml:"volumes,omitempty"`
	Tmpfs         []string `yaml:"tmpfs,omitempty"`
	Profiles      []string `yaml:"profiles,omitempty"`
}

// Services keeps services in insertion order when serialized
type Services []*Service

// MarshalYAML emits the services as a mapping keyed by name, in slice order
func (s Services) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, svc := range s {
		var value yaml.Node
		if err := value.Encode(svc); err != nil {
			return nil, fmt.Errorf("failed to encode service %s: %w", svc.Name, err)
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: svc.Name},
			&value)
	}
	return node, nil
}

// UnmarshalYAML reads a services mapping, preserving document order
func (s *Services) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("services: expected a mapping at line %d", value.Line)
	}

	var out Services
	for i := 0; i+1 < len(value.Content); i += 2 {
		svc := &Service{}
		if err := value.Content[i+1].Decode(svc); err != nil {
			return fmt.Errorf("service %s: %w", value.Content[i].Value, err)
		}
		svc.Name = value.Content[i].Value
		out = append(out, svc)
	}
	*s = out
	return nil
}

// Project is a complete compose document
type Project struct {
	Networks map[string]Network `yaml:"networks"`
	Services Services           `yaml:"services"`
}

// Service returns the named service, or nil
func (p *Project) Service(name string) *Service {
	for _, svc := range p.Services {
		if svc.Name == name {
			return svc
		}
	}
	return nil
}

// ServiceNames lists the services in document order
func (p *Project) ServiceNames() []string {
	names := make([]string, 0, len(p.Services))
	for _, svc := range p.Services {
		names = append(names, svc.Name)
	}
	return names
}

// Marshal renders the project as YAML
func Marshal(p *Project) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(header)

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(p); err != nil {
		return nil, fmt.Errorf("failed to marshal compose project: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to marshal compose project: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteFile atomically replaces path with the rendered project
func WriteFile(path string, p *Project) error {
	data, err := Marshal(p)
	if err != nil {
		return err
	}
	if err := state.WriteFileAtomic(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write compose file: %w", err)
	}
	return nil
}

// Load reads a compose file written by WriteFile
func Load(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read compose file: %w", err)
	}

	var p Project
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse compose file: %w", err)
	}
	return &p, nil
}
