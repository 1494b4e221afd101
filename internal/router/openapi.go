/*
 *  Licensed to the Apache Software Foundation (ASF) under one
 *  or more contributor license agreements.  See the NOTICE file
 *  distributed with this work for additional information
 *  regarding copyright ownership.  The ASF licenses this file
 *  to you under the Apache License, Version 2.0 (the
 *  "License"); you may not use this file except in compliance
 *  with the License.  You may obtain a copy of the License at
 *
 *   http://www.apache.org/licenses/LICENSE-2.0
 *
 *  Unless required by applicable law or agreed to in writing,
 *  software distributed under the License is distributed on an
 *   * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 *  KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations
 *  under the License.
 */

package router

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"gopkg.in/yaml.v2"
)

// APIResource describes one routable path and the operations it answers
// to, enough to render an OpenAPI path item.
type APIResource struct {
	Methods         []string
	PathTemplate    string
	PathParameters  []string
	QueryParameters map[string]string
}

// APIDescriptor names a deployed API for documentation purposes: the
// version/context used to compute its base path, and the resources
// hanging off it.
type APIDescriptor struct {
	Name      string
	Version   string
	Context   string
	Resources []APIResource
}

func (d *APIDescriptor) basePath() string {
	basePath := d.Context
	if len(basePath) > 1 && strings.HasSuffix(basePath, "/") {
		basePath = basePath[:len(basePath)-1]
	}
	if basePath != "" && !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	if d.Version != "" {
		if basePath == "" || basePath == "/" {
			basePath = "/" + d.Version
		} else {
			basePath = basePath + "/" + d.Version
		}
	}
	return basePath
}

// GenerateOpenAPISpec renders a minimal OpenAPI 3.0.3 document describing
// d's resources, with servers[0].url built from hostname/port.
func (d *APIDescriptor) GenerateOpenAPISpec(hostname string, port int) (map[string]interface{}, error) {
	spec := map[string]interface{}{"openapi": "3.0.3"}

	title := d.Name
	if title == "" {
		title = "API Documentation"
	}
	spec["info"] = map[string]interface{}{"title": title, "version": d.Version}

	serverURL := fmt.Sprintf("http://%s:%d%s", hostname, port, d.basePath())
	if _, err := url.Parse(serverURL); err != nil {
		return nil, fmt.Errorf("router: invalid server url %q: %w", serverURL, err)
	}
	spec["servers"] = []map[string]interface{}{{"url": serverURL}}

	paths := make(map[string]interface{})
	for _, res := range d.Resources {
		pathTemplate := res.PathTemplate
		if !strings.HasPrefix(pathTemplate, "/") {
			pathTemplate = "/" + pathTemplate
		}
		pathItem, ok := paths[pathTemplate].(map[string]interface{})
		if !ok {
			pathItem = make(map[string]interface{})
			paths[pathTemplate] = pathItem
		}

		var parameters []interface{}
		for _, name := range res.PathParameters {
			parameters = append(parameters, map[string]interface{}{
				"name": name, "in": "path", "required": true,
				"schema": map[string]interface{}{"type": "string"},
			})
		}
		for name := range res.QueryParameters {
			parameters = append(parameters, map[string]interface{}{
				"name": name, "in": "query", "required": false,
				"schema": map[string]interface{}{"type": "string"},
			})
		}

		for _, method := range res.Methods {
			httpMethod := strings.ToLower(method)
			operation := map[string]interface{}{
				"summary": fmt.Sprintf("%s %s", strings.ToUpper(httpMethod), pathTemplate),
				"responses": map[string]interface{}{
					"200":     map[string]interface{}{"description": "OK"},
					"default": map[string]interface{}{"description": "Unexpected error"},
				},
			}
			if len(parameters) > 0 {
				operation["parameters"] = parameters
			}
			pathItem[httpMethod] = operation
		}
	}
	spec["paths"] = paths
	return spec, nil
}

// ToJSON renders d's OpenAPI document as indented JSON.
func (d *APIDescriptor) ToJSON(hostname string, port int) ([]byte, error) {
	spec, err := d.GenerateOpenAPISpec(hostname, port)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(spec, "", "  ")
}

// ToYAML renders d's OpenAPI document as YAML.
func (d *APIDescriptor) ToYAML(hostname string, port int) ([]byte, error) {
	spec, err := d.GenerateOpenAPISpec(hostname, port)
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(spec)
}
