package main

import (
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"catalog/app/category"
	"catalog/app/item"
	"catalog/domain"
	"catalog/pkg/httperror"
)

// binder fills a request from the fiber context. Returned errors are rendered as is.
type binder[R Request] func(c *fiber.Ctx, req *R) error

// bindRequest parses body, path params, query and headers into req.
func bindRequest[R Request](c *fiber.Ctx, req *R) error {
	if err := c.BodyParser(req); err != nil && !errors.Is(err, fiber.ErrUnprocessableEntity) {
		return httperror.BadRequest(
			"request.invalid_body",
			"Invalid body",
			fiber.Map{"error": err.Error()},
		)
	}
	if err := bindParams(c, req); err != nil {
		return err
	}
	if err := c.QueryParser(req); err != nil {
		return httperror.BadRequest(
			"request.invalid_query_params",
			"Invalid query params",
			fiber.Map{"error": err.Error()},
		)
	}
	if err := c.ReqHeaderParser(req); err != nil {
		return httperror.BadRequest(
			"request.invalid_headers",
			"Invalid headers",
			fiber.Map{"error": err.Error()},
		)
	}
	return nil
}

func bindParams(c *fiber.Ctx, req any) error {
	if err := c.ParamsParser(req); err != nil {
		return httperror.BadRequest(
			"request.invalid_path_params",
			"Invalid path params",
			fiber.Map{"error": err.Error()},
		)
	}
	return nil
}

func isMultipart(c *fiber.Ctx) bool {
	return strings.HasPrefix(strings.ToLower(c.Get(fiber.HeaderContentType)), fiber.MIMEMultipartForm)
}

// bindCreateItem accepts a JSON draft, or a multipart form with the draft in
// the "item" field and an optional "image" file.
func bindCreateItem(maxImageBytes int64) binder[item.CreateItemRequest] {
	return func(c *fiber.Ctx, req *item.CreateItemRequest) error {
		if !isMultipart(c) {
			return bindRequest(c, req)
		}

		if err := json.Unmarshal([]byte(c.FormValue("item")), req); err != nil {
			return httperror.BadRequest(
				"item.create.invalid_body",
				"The item field must hold a JSON object",
				fiber.Map{"error": err.Error()},
			)
		}
		image, err := formImage(c, maxImageBytes)
		if err != nil {
			return httperror.FromDomain("item.create", err)
		}
		req.Image = image
		return nil
	}
}

// bindUpdateItem reads a merge patch from a JSON body, or from the optional
// "patch" field of a multipart form carrying an optional "image" file.
func bindUpdateItem(maxImageBytes int64) binder[item.UpdateItemRequest] {
	return func(c *fiber.Ctx, req *item.UpdateItemRequest) error {
		if err := bindParams(c, req); err != nil {
			return err
		}

		body := c.Body()
		if isMultipart(c) {
			body = []byte(c.FormValue("patch"))
			image, err := formImage(c, maxImageBytes)
			if err != nil {
				return httperror.FromDomain("item.update", err)
			}
			req.Image = image
		}
		if len(strings.TrimSpace(string(body))) == 0 {
			return nil
		}

		patch, err := domain.DecodeItemPatch(body)
		if err != nil {
			return httperror.FromDomain("item.update", err)
		}
		req.Patch = patch
		return nil
	}
}

func bindUpdateCategory(c *fiber.Ctx, req *category.UpdateCategoryRequest) error {
	if err := bindParams(c, req); err != nil {
		return err
	}
	if len(strings.TrimSpace(string(c.Body()))) == 0 {
		return nil
	}
	patch, err := domain.DecodeCategoryPatch(c.Body())
	if err != nil {
		return httperror.FromDomain("category.update", err)
	}
	req.Patch = patch
	return nil
}

// formImage returns nil when the form has no "image" file. A form that
// cannot be read is rejected rather than treated as imageless.
func formImage(c *fiber.Ctx, maxBytes int64) (*domain.Image, error) {
	header, err := c.FormFile("image")
	if errors.Is(err, fasthttp.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.InvalidInput("unreadable multipart form: %v", err)
	}
	if header.Size > maxBytes {
		return nil, domain.InvalidInput("image exceeds %d bytes", maxBytes)
	}

	f, err := header.Open()
	if err != nil {
		return nil, domain.InvalidInput("unreadable image upload")
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxBytes+1))
	if err != nil {
		return nil, domain.InvalidInput("unreadable image upload")
	}
	return domain.NewImage(data, header.Header.Get(fiber.HeaderContentType), header.Filename, maxBytes)
}
