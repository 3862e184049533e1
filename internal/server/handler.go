package server

import (
	"github.com/nhdewitt/route-server/internal/request"
	"github.com/nhdewitt/route-server/internal/response"
)

type Handler func(w *response.Writer, req *request.Request)
