package api

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Health check",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/notes": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "produces": ["application/json", "application/octet-stream"],
                "tags": ["notes"],
                "summary": "List notes",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/api.NoteDTO"}}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/api.APIResponse"}}
                }
            }
        },
        "/notes/{id}": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "produces": ["application/json", "application/octet-stream"],
                "tags": ["notes"],
                "summary": "Get a note",
                "parameters": [{"type": "integer", "description": "Note id", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.NoteDTO"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.APIResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.APIResponse"}}
                }
            },
            "put": {
                "security": [{"ApiKeyAuth": []}],
                "consumes": ["application/json", "application/octet-stream"],
                "produces": ["application/json"],
                "tags": ["notes"],
                "summary": "Store a note",
                "parameters": [
                    {"type": "integer", "description": "Note id", "name": "id", "in": "path", "required": true},
                    {"description": "Note", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/api.NoteDTO"}}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.APIResponse"}},
                    "413": {"description": "Request Entity Too Large", "schema": {"$ref": "#/definitions/api.APIResponse"}}
                }
            },
            "delete": {
                "security": [{"ApiKeyAuth": []}],
                "produces": ["application/json"],
                "tags": ["notes"],
                "summary": "Delete a note",
                "parameters": [{"type": "integer", "description": "Note id", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.APIResponse"}}
                }
            }
        },
        "/caches/{code}/notes": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "produces": ["application/json", "application/octet-stream"],
                "tags": ["notes"],
                "summary": "List notes for a cache",
                "parameters": [{"type": "string", "description": "Cache code", "name": "code", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/api.NoteDTO"}}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/api.APIResponse"}}
                }
            }
        },
        "/decode": {
            "post": {
                "security": [{"ApiKeyAuth": []}],
                "consumes": ["application/octet-stream"],
                "produces": ["application/json"],
                "tags": ["codec"],
                "summary": "Decode an envelope",
                "parameters": [{"type": "boolean", "description": "Reject newer schema versions", "name": "strict", "in": "query"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.DecodeResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.APIResponse"}}
                }
            }
        }
    },
    "definitions": {
        "api.APIResponse": {
            "type": "object",
            "properties": {
                "data": {},
                "error": {"type": "string"},
                "success": {"type": "boolean"}
            }
        },
        "api.DecodeResponse": {
            "type": "object",
            "properties": {
                "note": {"$ref": "#/definitions/api.NoteDTO"},
                "size": {"type": "integer"},
                "version": {"type": "integer"}
            }
        },
        "api.ImageDTO": {
            "type": "object",
            "properties": {
                "caption": {"type": "string"},
                "data": {"type": "string", "format": "byte"},
                "description": {"type": "string"},
                "id": {"type": "integer"},
                "note_id": {"type": "integer"}
            }
        },
        "api.ItemDTO": {
            "type": "object",
            "properties": {
                "action": {"type": "integer"},
                "code": {"type": "string"},
                "id": {"type": "integer"},
                "name": {"type": "string"},
                "note_id": {"type": "integer"}
            }
        },
        "api.NoteDTO": {
            "type": "object",
            "properties": {
                "cache_code": {"type": "string"},
                "cache_name": {"type": "string"},
                "favorite": {"type": "boolean"},
                "id": {"type": "integer"},
                "images": {"type": "array", "items": {"$ref": "#/definitions/api.ImageDTO"}},
                "items": {"type": "array", "items": {"$ref": "#/definitions/api.ItemDTO"}},
                "logged": {"type": "boolean"},
                "note": {"type": "string"},
                "time": {"type": "integer"},
                "type": {"type": "string", "example": "found"}
            }
        }
    },
    "securityDefinitions": {
        "ApiKeyAuth": {"type": "apiKey", "name": "X-API-Key", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "fieldnotes REST API",
	Description:      "Store and exchange geocaching field notes as versioned binary envelopes or JSON.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
