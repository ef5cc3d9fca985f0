package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "University Administration API",
        "description": "Tuition billing and course registration backend",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "tags": [
        {"name": "Authentication", "description": "Login, token refresh and session management"},
        {"name": "Students", "description": "Student roster management"},
        {"name": "Courses", "description": "Course catalogue management"},
        {"name": "Semesters", "description": "Academic calendar management"},
        {"name": "Registrations", "description": "Course registration lifecycle"},
        {"name": "Fees", "description": "Tuition fee calculation and lookup"},
        {"name": "Payments", "description": "Payment reconciliation and ledger"}
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
                    "200": {"description": "Ready"},
                    "503": {"description": "Database unreachable"}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate by username and password",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "Token pair issued", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Rotate a refresh token",
                "responses": {
                    "200": {"description": "New token pair", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Token expired or revoked"}
                }
            }
        },
        "/students": {
            "get": {
                "tags": ["Students"],
                "summary": "List students",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Paginated students", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Students"],
                "summary": "Create student",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "201": {"description": "Created"}
                }
            }
        },
        "/students/{id}": {
            "get": {
                "tags": ["Students"],
                "summary": "Student detail with resolved discount",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Student", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/courses": {
            "get": {
                "tags": ["Courses"],
                "summary": "List courses",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Paginated courses"}
                }
            },
            "post": {
                "tags": ["Courses"],
                "summary": "Create course",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "201": {"description": "Created"}
                }
            }
        },
        "/semesters": {
            "get": {
                "tags": ["Semesters"],
                "summary": "List semesters with registration and payment deadlines",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Semesters"}
                }
            }
        },
        "/registrations": {
            "get": {
                "tags": ["Registrations"],
                "summary": "List course registrations",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Paginated registrations"}
                }
            },
            "post": {
                "tags": ["Registrations"],
                "summary": "Register a student for a course",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "201": {"description": "Registered"},
                    "409": {"description": "Duplicate registration"},
                    "422": {"description": "Credit limit exceeded"}
                }
            }
        },
        "/registrations/{id}/status": {
            "put": {
                "tags": ["Registrations"],
                "summary": "Confirm or cancel a registration",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Updated"},
                    "409": {"description": "Registration already finalized"}
                }
            }
        },
        "/registrations/finalize": {
            "post": {
                "tags": ["Registrations"],
                "summary": "Finalize confirmed registrations and bill tuition",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Fee result", "schema": {"$ref": "#/definitions/FeeResult"}},
                    "412": {"description": "Not all registrations confirmed"}
                }
            }
        },
        "/registrations/summary": {
            "get": {
                "tags": ["Registrations"],
                "summary": "Per-semester registration summary with estimated gross fee",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Summary"}
                }
            }
        },
        "/fees/calculate": {
            "post": {
                "tags": ["Fees"],
                "summary": "Calculate and persist tuition for a student's semester",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Fee result", "schema": {"$ref": "#/definitions/FeeResult"}},
                    "422": {"description": "Credit limit exceeded"}
                }
            }
        },
        "/fees/{id}/payments": {
            "post": {
                "tags": ["Payments"],
                "summary": "Record a payment against a tuition fee",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Payment result"},
                    "400": {"description": "Non-positive amount"},
                    "412": {"description": "Fee already settled"}
                }
            },
            "get": {
                "tags": ["Payments"],
                "summary": "List payments recorded against a fee",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Payment ledger"}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "properties": {
                "username": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "FeeResult": {
            "type": "object",
            "properties": {
                "tuition_fee": {"type": "string"},
                "discount": {"type": "string"},
                "payment_status": {"type": "string"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
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
                "pagination": {"$ref": "#/definitions/Pagination"},
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
