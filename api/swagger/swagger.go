package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "S-ACM API",
        "description": "Academic content portal: authorization engine, rate governor and bulk roster import",
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
        {"name": "Authentication", "description": "Login and account activation"},
        {"name": "Courses", "description": "Course browsing and lecture files"},
        {"name": "Files", "description": "Lecture file lifecycle and downloads"},
        {"name": "Directory", "description": "Reference tables"},
        {"name": "Principals", "description": "Admin principal directory"},
        {"name": "Import", "description": "Bulk roster import"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate by academic id and password",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "Access token issued", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials or inactive account"},
                    "429": {"description": "Rate limit exceeded"}
                }
            }
        },
        "/auth/activate": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Activate an imported account",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ActivateRequest"}}
                ],
                "responses": {
                    "200": {"description": "Account activated"},
                    "401": {"description": "ID card number mismatch"},
                    "409": {"description": "Account already activated"},
                    "429": {"description": "Rate limit exceeded"}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Current principal profile",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Principal detail"},
                    "401": {"description": "Unauthorized"}
                }
            }
        },
        "/courses": {
            "get": {
                "tags": ["Courses"],
                "summary": "List courses for the authenticated student",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Course list"},
                    "412": {"description": "Student not yet classified"}
                }
            }
        },
        "/courses/{id}": {
            "get": {
                "tags": ["Courses"],
                "summary": "Fetch one course",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Course detail"},
                    "403": {"description": "Access denied with reason code"},
                    "404": {"description": "Course not found"}
                }
            }
        },
        "/courses/{id}/files": {
            "get": {
                "tags": ["Courses"],
                "summary": "List a course's lecture files",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File list; students only see visible files"},
                    "403": {"description": "Access denied"}
                }
            },
            "post": {
                "tags": ["Files"],
                "summary": "Upload a lecture file",
                "security": [{"BearerAuth": []}],
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "title", "in": "formData", "type": "string"},
                    {"name": "file", "in": "formData", "required": true, "type": "file"}
                ],
                "responses": {
                    "201": {"description": "File stored"},
                    "400": {"description": "Upload rejected by validation"},
                    "403": {"description": "Not assigned to course"}
                }
            }
        },
        "/files/{id}/download": {
            "post": {
                "tags": ["Files"],
                "summary": "Authorize a download and return a signed token",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Download grant"},
                    "403": {"description": "Access denied with reason code"},
                    "404": {"description": "File not found"}
                }
            }
        },
        "/files/download": {
            "get": {
                "tags": ["Files"],
                "summary": "Stream a granted file",
                "parameters": [
                    {"name": "token", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File content"},
                    "401": {"description": "Invalid or expired token"}
                }
            }
        },
        "/files/{id}": {
            "delete": {
                "tags": ["Files"],
                "summary": "Soft-delete a lecture file",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "File deleted"},
                    "403": {"description": "Not assigned to course"}
                }
            }
        },
        "/files/{id}/visibility": {
            "patch": {
                "tags": ["Files"],
                "summary": "Toggle a file's student visibility",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"type": "object", "properties": {"visible": {"type": "boolean"}}}}
                ],
                "responses": {
                    "204": {"description": "Visibility updated"}
                }
            }
        },
        "/directory/roles": {
            "get": {
                "tags": ["Directory"],
                "summary": "List roles",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "Role list"}}
            }
        },
        "/directory/majors": {
            "get": {
                "tags": ["Directory"],
                "summary": "List majors",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "Major list"}}
            }
        },
        "/directory/levels": {
            "get": {
                "tags": ["Directory"],
                "summary": "List study levels",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "Level list"}}
            }
        },
        "/directory/semesters": {
            "get": {
                "tags": ["Directory"],
                "summary": "List semesters",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "Semester list"}}
            }
        },
        "/directory/semesters/current": {
            "get": {
                "tags": ["Directory"],
                "summary": "Fetch the current semester",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Current semester"},
                    "404": {"description": "No current semester configured"}
                }
            }
        },
        "/admin/principals": {
            "get": {
                "tags": ["Principals"],
                "summary": "List principals",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "role", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "Paginated principal list"}}
            }
        },
        "/admin/principals/{id}": {
            "get": {
                "tags": ["Principals"],
                "summary": "Fetch one principal",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Principal detail"},
                    "404": {"description": "Principal not found"}
                }
            }
        },
        "/admin/principals/export": {
            "get": {
                "tags": ["Principals"],
                "summary": "Export the filtered roster as CSV",
                "security": [{"BearerAuth": []}],
                "produces": ["text/csv"],
                "responses": {"200": {"description": "CSV roster"}}
            }
        },
        "/admin/principals/import": {
            "post": {
                "tags": ["Import"],
                "summary": "Bulk-import principals from CSV",
                "security": [{"BearerAuth": []}],
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "file", "in": "formData", "required": true, "type": "file"}
                ],
                "responses": {
                    "200": {"description": "Import report", "schema": {"$ref": "#/definitions/ImportReport"}},
                    "413": {"description": "File exceeds size ceiling"},
                    "429": {"description": "Rate limit exceeded"}
                }
            }
        },
        "/admin/principals/promote": {
            "post": {
                "tags": ["Principals"],
                "summary": "Run the end-of-year level promotion",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "Promotion report"}}
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "required": ["academic_id", "password"],
            "properties": {
                "academic_id": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "ActivateRequest": {
            "type": "object",
            "required": ["academic_id", "id_card_number", "email", "password"],
            "properties": {
                "academic_id": {"type": "string"},
                "id_card_number": {"type": "string"},
                "email": {"type": "string"},
                "password": {"type": "string", "minLength": 8}
            }
        },
        "ImportReport": {
            "type": "object",
            "properties": {
                "created": {"type": "integer"},
                "skipped": {"type": "integer"},
                "errors": {"type": "array", "items": {"type": "string"}}
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
