// Package docs holds the OpenAPI document served by echo-swagger.
// Regenerate with: swag init -g cmd/api/main.go -o docs
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/meetings": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Meetings"],
                "summary": "List meetings",
                "parameters": [
                    {"type": "integer", "default": 20, "description": "Page size (1-100)", "name": "limit", "in": "query"},
                    {"type": "integer", "default": 0, "description": "Offset", "name": "offset", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/common.SuccessResponse"}},
                    "400": {"description": "Invalid pagination", "schema": {"$ref": "#/definitions/common.ErrorResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Meetings"],
                "summary": "Create meeting",
                "parameters": [
                    {"description": "Meeting metadata", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/meeting.CreateMeetingRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/common.SuccessResponse"}},
                    "400": {"description": "Invalid payload", "schema": {"$ref": "#/definitions/common.ErrorResponse"}}
                }
            }
        },
        "/meetings/upload": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["Meetings"],
                "summary": "Upload meeting audio",
                "parameters": [
                    {"type": "file", "description": "Audio file", "name": "file", "in": "formData", "required": true},
                    {"type": "string", "description": "Meeting title", "name": "title", "in": "formData", "required": true},
                    {"type": "string", "description": "Description", "name": "description", "in": "formData"},
                    {"type": "string", "description": "Meeting type", "name": "meetingType", "in": "formData"},
                    {"type": "string", "description": "Comma separated participant names", "name": "participants", "in": "formData"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/common.SuccessResponse"}},
                    "413": {"description": "Upload too large", "schema": {"$ref": "#/definitions/common.ErrorResponse"}}
                }
            }
        },
        "/meetings/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Meetings"],
                "summary": "Get meeting status",
                "parameters": [{"type": "string", "description": "Meeting ID (UUID)", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/common.SuccessResponse"}},
                    "404": {"description": "Meeting not found"}
                }
            }
        },
        "/meetings/{id}/progress": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Meetings"],
                "summary": "Get processing progress",
                "parameters": [{"type": "string", "description": "Meeting ID (UUID)", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/common.SuccessResponse"}},
                    "404": {"description": "Meeting not found"}
                }
            }
        },
        "/meetings/{id}/progress/stream": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["text/event-stream"],
                "tags": ["Meetings"],
                "summary": "Stream processing progress",
                "parameters": [{"type": "string", "description": "Meeting ID (UUID)", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "event stream", "schema": {"type": "string"}},
                    "503": {"description": "Streaming unavailable", "schema": {"$ref": "#/definitions/common.ErrorResponse"}}
                }
            }
        },
        "/meetings/{id}/process": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Meetings"],
                "summary": "Process meeting",
                "parameters": [
                    {"type": "string", "description": "Meeting ID (UUID)", "name": "id", "in": "path", "required": true},
                    {"type": "boolean", "description": "Queue the run instead of waiting for it", "name": "async", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/common.SuccessResponse"}},
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/common.SuccessResponse"}},
                    "409": {"description": "Meeting is not awaiting processing", "schema": {"$ref": "#/definitions/common.ErrorResponse"}},
                    "422": {"description": "Meeting media not found", "schema": {"$ref": "#/definitions/common.ErrorResponse"}},
                    "500": {"description": "Processing failed at a stage", "schema": {"$ref": "#/definitions/common.ErrorResponse"}},
                    "503": {"description": "Processing queue is full", "schema": {"$ref": "#/definitions/common.ErrorResponse"}}
                }
            }
        },
        "/meetings/{id}/actions/export": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"],
                "tags": ["Meetings"],
                "summary": "Export actions",
                "parameters": [{"type": "string", "description": "Meeting ID (UUID)", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "file"}}
                }
            }
        },
        "/actions": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Actions"],
                "summary": "List actions",
                "parameters": [
                    {"enum": ["pending", "in_progress", "completed"], "type": "string", "description": "Filter by status", "name": "status", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/common.SuccessResponse"}},
                    "400": {"description": "Invalid status", "schema": {"$ref": "#/definitions/common.ErrorResponse"}}
                }
            }
        },
        "/actions/{id}": {
            "patch": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Actions"],
                "summary": "Update action",
                "parameters": [
                    {"type": "string", "description": "Action ID (UUID)", "name": "id", "in": "path", "required": true},
                    {"description": "Status and notes", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/meeting.UpdateActionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/common.SuccessResponse"}},
                    "409": {"description": "Backward status change", "schema": {"$ref": "#/definitions/common.ErrorResponse"}}
                }
            }
        },
        "/stats": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Actions"],
                "summary": "User stats",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/common.SuccessResponse"}},
                    "401": {"description": "User not authenticated", "schema": {"$ref": "#/definitions/common.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "common.ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "integer"},
                "message": {"type": "string"},
                "info": {"type": "string"},
                "details": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        },
        "common.SuccessResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "integer"},
                "message": {"type": "string"},
                "data": {}
            }
        },
        "meeting.CreateMeetingRequest": {
            "type": "object",
            "required": ["audioRef", "title"],
            "properties": {
                "title": {"type": "string"},
                "description": {"type": "string"},
                "audioRef": {"type": "string"},
                "meetingType": {"type": "string"},
                "participants": {"type": "array", "items": {"type": "string"}}
            }
        },
        "meeting.UpdateActionRequest": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "enum": ["pending", "in_progress", "completed"]},
                "implementationNotes": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and JWT token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/v1",
	Schemes:          []string{},
	Title:            "Meeting Insights API",
	Description:      "Turns recorded mentoring meetings into transcripts, insights and a tracked action plan.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
