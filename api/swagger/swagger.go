package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Session Scheduler API",
        "description": "Weekly client-session scheduling over availability windows",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Scheduler", "description": "Weekly schedule construction and replay"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"}
                }
            }
        },
        "/api/v1/schedule": {
            "post": {
                "tags": ["Scheduler"],
                "summary": "Build a weekly schedule from appointment requests",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ScheduleRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid payload", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "High priority request unschedulable", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/schedule/runs/{id}": {
            "get": {
                "tags": ["Scheduler"],
                "summary": "Replay a finished scheduling run",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Run not found or expired", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/metrics": {
            "get": {
                "summary": "Prometheus metrics",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        }
    },
    "definitions": {
        "TimeFrame": {
            "type": "object",
            "required": ["start", "end"],
            "properties": {
                "start": {"type": "string", "format": "date-time"},
                "end": {"type": "string", "format": "date-time"}
            }
        },
        "DayRequest": {
            "type": "object",
            "required": ["day"],
            "properties": {
                "day": {"type": "string", "enum": ["Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday"]},
                "time_frames": {"type": "array", "items": {"$ref": "#/definitions/TimeFrame"}}
            }
        },
        "AppointmentRequest": {
            "type": "object",
            "required": ["id", "priority", "type"],
            "properties": {
                "id": {"type": "string"},
                "priority": {"type": "string", "enum": ["High", "Medium", "Low", "Exclude"]},
                "type": {"type": "string", "enum": ["streets", "trial_streets", "zoom", "trial_zoom"]},
                "time": {"type": "integer", "description": "Session minutes; optional for trial types"},
                "days": {"type": "array", "items": {"$ref": "#/definitions/DayRequest"}}
            }
        },
        "ScheduleRequest": {
            "type": "object",
            "required": ["start_date", "appointments"],
            "properties": {
                "start_date": {"type": "string", "example": "2025-03-02"},
                "appointments": {"type": "array", "items": {"$ref": "#/definitions/AppointmentRequest"}},
                "strategy": {"type": "string", "enum": ["backtracking", "optimizer"]}
            }
        },
        "FilledAppointment": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "type": {"type": "string"},
                "start_time": {"type": "string", "format": "date-time"},
                "end_time": {"type": "string", "format": "date-time"}
            }
        },
        "ScheduleResponse": {
            "type": "object",
            "properties": {
                "filled_appointments": {"type": "array", "items": {"$ref": "#/definitions/FilledAppointment"}},
                "unfilled_appointments": {"type": "array", "items": {"type": "object"}},
                "validation": {"type": "object"},
                "type_balance": {"type": "object"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
