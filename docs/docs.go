// Package docs holds the OpenAPI document served at /swagger/ and /api/openapi.json.
// Regenerate with: swag init -g internal/http/doc.go
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
        "/api/boards": {
            "get": {
                "description": "Page through the board directory. Boards carry their live post count as score and are not votable.",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Boards"
                ],
                "summary": "List boards",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Sort order",
                        "name": "sort",
                        "in": "query",
                        "enum": [
                            "new",
                            "top"
                        ],
                        "default": "new"
                    },
                    {
                        "type": "string",
                        "description": "Time window for top-level items",
                        "name": "t",
                        "in": "query",
                        "enum": [
                            "hour",
                            "day",
                            "week",
                            "month",
                            "year",
                            "all"
                        ],
                        "default": "all"
                    },
                    {
                        "type": "integer",
                        "description": "Keyset cursor for sort=new: return items with a smaller id",
                        "name": "cursor",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "description": "Offset for sort=top",
                        "name": "offset",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "description": "Page size",
                        "name": "limit",
                        "in": "query",
                        "default": 25,
                        "maximum": 100
                    }
                ],
                "responses": {
                    "200": {
                        "description": "One page of items",
                        "schema": {
                            "$ref": "#/definitions/model.Page"
                        }
                    },
                    "503": {
                        "description": "Content temporarily unavailable; retry after the Retry-After delay",
                        "schema": {
                            "$ref": "#/definitions/httpapp.errorResponse"
                        }
                    }
                }
            },
            "post": {
                "description": "Create a new board. Requires authentication.",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Boards"
                ],
                "summary": "Create a board",
                "consumes": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "description": "Board to create",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/httpapp.createBoardRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created board",
                        "schema": {
                            "$ref": "#/definitions/model.Item"
                        }
                    },
                    "400": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/httpapp.errorResponse"
                        }
                    },
                    "401": {
                        "description": "Missing or invalid bearer token",
                        "schema": {
                            "$ref": "#/definitions/httpapp.errorResponse"
                        }
                    },
                    "409": {
                        "description": "Slug already taken",
                        "schema": {
                            "$ref": "#/definitions/httpapp.errorResponse"
                        }
                    }
                }
            }
        },
        "/api/boards/{slug}/posts": {
            "get": {
                "description": "Page through the posts of one board with the viewer's votes overlaid. Deleted posts stay in place, redacted.",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Boards"
                ],
                "summary": "List posts in a board",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Board slug",
                        "name": "slug",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Sort order",
                        "name": "sort",
                        "in": "query",
                        "enum": [
                            "new",
                            "top"
                        ],
                        "default": "new"
                    },
                    {
                        "type": "string",
                        "description": "Time window for top-level items",
                        "name": "t",
                        "in": "query",
                        "enum": [
                            "hour",
                            "day",
                            "week",
                            "month",
                            "year",
                            "all"
                        ],
                        "default": "all"
                    },
                    {
                        "type": "integer",
                        "description": "Keyset cursor for sort=new: return items with a smaller id",
                        "name": "cursor",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "description": "Offset for sort=top",
                        "name": "offset",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "description": "Page size",
                        "name": "limit",
                        "in": "query",
                        "default": 25,
                        "maximum": 100
                    }
                ],
                "responses": {
                    "200": {
                        "description": "One page of items",
                        "schema": {
                            "$ref": "#/definitions/model.Page"
                        }
                    },
                    "404": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/httpapp.errorResponse"
                        }
                    },
                    "503": {
                        "description": "Content temporarily unavailable; retry after the Retry-After delay",
                        "schema": {
                            "$ref": "#/definitions/httpapp.errorResponse"
                        }
                    }
                }
            }
        },
        "/api/posts": {
            "post": {
                "description": "Submit a link or text post to a board. Requires authentication.",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Posts"
                ],
                "summary": "Submit a post",
                "consumes": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "description": "Post to submit",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/httpapp.createPostRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created post",
                        "schema": {
                            "$ref": "#/definitions/model.Item"
                        }
                    },
                    "400": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/httpapp.errorResponse"
                        }
                    },
                    "401": {
                        "description": "Missing or invalid bearer token",
                        "schema": {
                            "$ref": "#/definitions/httpapp.errorResponse"
                        }
                    },
                    "404": {
                        "description": "Board not found",
                        "schema": {
                            "$ref": "#/definitions/httpapp.errorResponse"
                        }
                    }
                }
            }
        },
        "/api/posts/{id}": {
            "get": {
                "description": "Get a single post with the viewer's vote.",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Posts"
                ],
                "summary": "Get a post",
                "parameters": [
                    {
                        "type": "integer",
                        "description": "Post ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "The post",
                        "schema": {
                            "$ref": "#/definitions/model.Item"
                        }
                    },
                    "404": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/httpapp.errorResponse"
                        }
                    },
                    "503": {
                        "description": "Content temporarily unavailable; retry after the Retry-After delay",
                        "schema": {
                            "$ref": "#/definitions/httpapp.errorResponse"
                        }
                    }
                }
            }
        },
        "/api/posts/{id}/comments": {
            "get": {
                "description": "Get one page of top-level comments of a post, each with its first page of replies. With parent, page through the replies of that comment instead.",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Comments"
                ],
                "summary": "Get a thread",
                "parameters": [
                    {
                        "type": "integer",
                        "description": "Post ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "integer",
                        "description": "Comment whose replies to page through",
                        "name": "parent",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "Sort order",
                        "name": "sort",
                        "in": "query",
                        "enum": [
                            "new",
                            "top"
                        ],
                        "default": "new"
                    },
                    {
                        "type": "integer",
                        "description": "Keyset cursor for sort=new: return items with a smaller id",
                        "name": "cursor",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "description": "Offset for sort=top",
                        "name": "offset",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "description": "Page size",
                        "name": "limit",
                        "in": "query",
                        "default": 25,
                        "maximum": 100
                    }
                ],
                "responses": {
                    "200": {
                        "description": "One page of items",
                        "schema": {
                            "$ref": "#/definitions/model.Page"
                        }
                    },
                    "404": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/httpapp.errorResponse"
                        }
                    },
                    "503": {
                        "description": "Content temporarily unavailable; retry after the Retry-After delay",
                        "schema": {
                            "$ref": "#/definitions/httpapp.errorResponse"
                        }
                    }
                }
            }
        },
        "/api/comments": {
            "post": {
                "description": "Comment on a post, or reply to a comment with parent_id. Requires authentication.",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Comments"
                ],
                "summary": "Post a comment",
                "consumes": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "description": "Comment to post",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/httpapp.createCommentRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created comment",
                        "schema": {
                            "$ref": "#/definitions/model.Item"
                        }
                    },
                    "400": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/httpapp.errorResponse"
                        }
                    },
                    "401": {
                        "description": "Missing or invalid bearer token",
                        "schema": {
                            "$ref": "#/definitions/httpapp.errorResponse"
                        }
                    },
                    "404": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/httpapp.errorResponse"
                        }
                    }
                }
            }
        },
        "/api/votes": {
            "post": {
                "description": "Set the viewer's vote on a post or comment. Direction 0 clears the vote. Requires authentication.",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Votes"
                ],
                "summary": "Vote on an item",
                "consumes": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "description": "Vote to cast",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/httpapp.voteRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Fields changed by the mutation",
                        "schema": {
                            "$ref": "#/definitions/model.Patch"
                        }
                    },
                    "400": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/httpapp.errorResponse"
                        }
                    },
                    "401": {
                        "description": "Missing or invalid bearer token",
                        "schema": {
                            "$ref": "#/definitions/httpapp.errorResponse"
                        }
                    },
                    "404": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/httpapp.errorResponse"
                        }
                    }
                }
            }
        },
        "/api/items/{id}": {
            "delete": {
                "description": "Soft-delete your own post or comment. Replies stay in the thread. Requires authentication.",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Posts"
                ],
                "summary": "Delete an item",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "integer",
                        "description": "Item ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Fields changed by the mutation",
                        "schema": {
                            "$ref": "#/definitions/model.Patch"
                        }
                    },
                    "401": {
                        "description": "Missing or invalid bearer token",
                        "schema": {
                            "$ref": "#/definitions/httpapp.errorResponse"
                        }
                    },
                    "403": {
                        "description": "Not the author",
                        "schema": {
                            "$ref": "#/definitions/httpapp.errorResponse"
                        }
                    },
                    "404": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/httpapp.errorResponse"
                        }
                    }
                }
            }
        },
        "/api/auth/challenge": {
            "post": {
                "description": "Request a one-time challenge to sign with your private key.",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Auth"
                ],
                "summary": "Request a challenge",
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "description": "Signature algorithm",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/httpapp.challengeRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Challenge",
                        "schema": {
                            "$ref": "#/definitions/httpapp.challengeResponse"
                        }
                    },
                    "400": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/httpapp.errorResponse"
                        }
                    }
                }
            }
        },
        "/api/auth/verify": {
            "post": {
                "description": "Verify a signed challenge from a registered key and issue a bearer token.",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Auth"
                ],
                "summary": "Exchange a signed challenge for a token",
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "description": "Signed challenge",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/httpapp.signedChallengeRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Bearer token",
                        "schema": {
                            "$ref": "#/definitions/httpapp.tokenResponse"
                        }
                    },
                    "400": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/httpapp.errorResponse"
                        }
                    },
                    "401": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/httpapp.errorResponse"
                        }
                    }
                }
            }
        },
        "/api/accounts": {
            "post": {
                "description": "Create an account bound to the signing key and issue a bearer token.",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Accounts"
                ],
                "summary": "Register an account",
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "description": "Account and signed challenge",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/httpapp.createAccountRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Bearer token",
                        "schema": {
                            "$ref": "#/definitions/httpapp.tokenResponse"
                        }
                    },
                    "400": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/httpapp.errorResponse"
                        }
                    },
                    "401": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/httpapp.errorResponse"
                        }
                    },
                    "409": {
                        "description": "Display name or key already registered",
                        "schema": {
                            "$ref": "#/definitions/httpapp.errorResponse"
                        }
                    }
                }
            }
        },
        "/api/accounts/{id}": {
            "get": {
                "description": "Get an account's profile item.",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Accounts"
                ],
                "summary": "Get a profile",
                "parameters": [
                    {
                        "type": "integer",
                        "description": "Account ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Profile item",
                        "schema": {
                            "$ref": "#/definitions/model.Item"
                        }
                    },
                    "404": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/httpapp.errorResponse"
                        }
                    },
                    "503": {
                        "description": "Content temporarily unavailable; retry after the Retry-After delay",
                        "schema": {
                            "$ref": "#/definitions/httpapp.errorResponse"
                        }
                    }
                }
            }
        },
        "/api/accounts/{id}/feed": {
            "get": {
                "description": "Page through an account's posts and comments. Deleted items are excluded.",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Accounts"
                ],
                "summary": "List an account's activity",
                "parameters": [
                    {
                        "type": "integer",
                        "description": "Account ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Content filter",
                        "name": "type",
                        "in": "query",
                        "enum": [
                            "all",
                            "posts",
                            "comments"
                        ],
                        "default": "all"
                    },
                    {
                        "type": "string",
                        "description": "Sort order",
                        "name": "sort",
                        "in": "query",
                        "enum": [
                            "new",
                            "top"
                        ],
                        "default": "new"
                    },
                    {
                        "type": "string",
                        "description": "Time window for top-level items",
                        "name": "t",
                        "in": "query",
                        "enum": [
                            "hour",
                            "day",
                            "week",
                            "month",
                            "year",
                            "all"
                        ],
                        "default": "all"
                    },
                    {
                        "type": "integer",
                        "description": "Keyset cursor for sort=new: return items with a smaller id",
                        "name": "cursor",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "description": "Offset for sort=top",
                        "name": "offset",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "description": "Page size",
                        "name": "limit",
                        "in": "query",
                        "default": 25,
                        "maximum": 100
                    }
                ],
                "responses": {
                    "200": {
                        "description": "One page of items",
                        "schema": {
                            "$ref": "#/definitions/model.Page"
                        }
                    },
                    "404": {
                        "description": "Error",
                        "schema": {
                            "$ref": "#/definitions/httpapp.errorResponse"
                        }
                    },
                    "503": {
                        "description": "Content temporarily unavailable; retry after the Retry-After delay",
                        "schema": {
                            "$ref": "#/definitions/httpapp.errorResponse"
                        }
                    }
                }
            }
        },
        "/api/openapi.json": {
            "get": {
                "description": "This document.",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Meta"
                ],
                "summary": "OpenAPI document",
                "responses": {
                    "200": {
                        "description": "Swagger 2.0 document"
                    }
                }
            }
        },
        "/health": {
            "get": {
                "description": "Liveness check.",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Meta"
                ],
                "summary": "Health check",
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        }
    },
    "definitions": {
        "httpapp.errorResponse": {
            "type": "object",
            "properties": {
                "error": {
                    "type": "string"
                }
            }
        },
        "httpapp.challengeRequest": {
            "type": "object",
            "properties": {
                "alg": {
                    "type": "string",
                    "enum": [
                        "ed25519",
                        "secp256k1"
                    ]
                }
            },
            "required": [
                "alg"
            ]
        },
        "httpapp.challengeResponse": {
            "type": "object",
            "properties": {
                "challenge": {
                    "type": "string"
                },
                "expires_at": {
                    "type": "string"
                }
            }
        },
        "httpapp.signedChallengeRequest": {
            "type": "object",
            "properties": {
                "alg": {
                    "type": "string",
                    "enum": [
                        "ed25519",
                        "secp256k1"
                    ]
                },
                "public_key": {
                    "type": "string"
                },
                "challenge": {
                    "type": "string"
                },
                "signature": {
                    "type": "string"
                }
            },
            "required": [
                "alg",
                "challenge",
                "public_key",
                "signature"
            ]
        },
        "httpapp.createAccountRequest": {
            "type": "object",
            "properties": {
                "alg": {
                    "type": "string",
                    "enum": [
                        "ed25519",
                        "secp256k1"
                    ]
                },
                "public_key": {
                    "type": "string"
                },
                "challenge": {
                    "type": "string"
                },
                "signature": {
                    "type": "string"
                },
                "display_name": {
                    "type": "string",
                    "maxLength": 40
                },
                "bio": {
                    "type": "string",
                    "maxLength": 2000
                }
            },
            "required": [
                "alg",
                "challenge",
                "display_name",
                "public_key",
                "signature"
            ]
        },
        "httpapp.tokenResponse": {
            "type": "object",
            "properties": {
                "account_id": {
                    "type": "integer"
                },
                "access_token": {
                    "type": "string"
                },
                "expires_at": {
                    "type": "string"
                }
            }
        },
        "httpapp.createBoardRequest": {
            "type": "object",
            "properties": {
                "slug": {
                    "type": "string",
                    "minLength": 2,
                    "maxLength": 32
                },
                "title": {
                    "type": "string",
                    "maxLength": 120
                },
                "description": {
                    "type": "string",
                    "maxLength": 2000
                }
            },
            "required": [
                "slug",
                "title"
            ]
        },
        "httpapp.createPostRequest": {
            "type": "object",
            "properties": {
                "board": {
                    "type": "string"
                },
                "title": {
                    "type": "string",
                    "maxLength": 300
                },
                "url": {
                    "type": "string"
                },
                "body": {
                    "type": "string",
                    "maxLength": 40000
                }
            },
            "required": [
                "board",
                "title"
            ]
        },
        "httpapp.createCommentRequest": {
            "type": "object",
            "properties": {
                "post_id": {
                    "type": "integer"
                },
                "parent_id": {
                    "type": "integer"
                },
                "body": {
                    "type": "string",
                    "maxLength": 10000
                }
            },
            "required": [
                "body",
                "post_id"
            ]
        },
        "httpapp.voteRequest": {
            "type": "object",
            "properties": {
                "item_id": {
                    "type": "integer"
                },
                "direction": {
                    "type": "integer",
                    "enum": [
                        -1,
                        0,
                        1
                    ]
                }
            },
            "required": [
                "item_id"
            ]
        },
        "model.Item": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "integer"
                },
                "kind": {
                    "type": "string",
                    "enum": [
                        "post",
                        "comment",
                        "board",
                        "profile"
                    ]
                },
                "parent_id": {
                    "type": "integer"
                },
                "created_at": {
                    "type": "string"
                },
                "score": {
                    "type": "integer"
                },
                "author_id": {
                    "type": "integer"
                },
                "author_name": {
                    "type": "string"
                },
                "deleted": {
                    "type": "boolean"
                },
                "content": {
                    "type": "object"
                },
                "children": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/model.Item"
                    }
                },
                "vote": {
                    "type": "integer",
                    "enum": [
                        -1,
                        0,
                        1
                    ]
                },
                "has_more_children": {
                    "type": "boolean"
                }
            }
        },
        "model.Page": {
            "type": "object",
            "properties": {
                "items": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/model.Item"
                    }
                },
                "end_of_items": {
                    "type": "boolean"
                }
            }
        },
        "model.Patch": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "integer"
                },
                "score": {
                    "type": "integer"
                },
                "vote": {
                    "type": "integer",
                    "enum": [
                        -1,
                        0,
                        1
                    ]
                },
                "deleted": {
                    "type": "boolean"
                }
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and the access token.",
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
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Slashboard API",
	Description:      "Threaded discussion boards with paginated feeds, comment trees and per-viewer votes.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
