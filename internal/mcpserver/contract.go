package mcpserver

// UsageContract tells LLM consumers how the media library is laid out and
// what the tools accept.
const UsageContract = `# Media Library Usage

The media library is a folder inside a site repository. Every path handed to
the tools is relative to that folder and starts with a slash:
` + "`" + `/` + "`" + ` is the library root, ` + "`" + `/blog/2024` + "`" + ` a folder below it.

## Listing

- ` + "`" + `list_media` + "`" + ` returns one page: ` + "`" + `directories` + "`" + ` first (as ` + "`" + `/name` + "`" + `),
  then ` + "`" + `files` + "`" + ` with ` + "`" + `src` + "`" + `, ` + "`" + `filename` + "`" + `, ` + "`" + `size` + "`" + ` and ` + "`" + `isFile` + "`" + `.
- A ` + "`" + `cursor` + "`" + ` in the response means more entries follow; pass it back to get the next page.
- A file's ` + "`" + `src` + "`" + ` is the URL the published site serves it under. Use it verbatim
  in Markdown: ` + "`" + `![alt](/uploads/blog/2024/cover.png)` + "`" + `.

## Uploading

- ` + "`" + `upload_media` + "`" + ` accepts an http(s) URL or a base64 data URI.
- Supported formats: png, jpg, jpeg, gif, webp, svg, pdf. Content must match the extension.
- Files are limited to 10 MB. Existing files are never overwritten.
- Missing folders are created. File names are reduced to ` + "`" + `[a-zA-Z0-9._-]` + "`" + `.

## Deleting

- ` + "`" + `delete_media` + "`" + ` removes a file or a folder with everything below it.
- The library root itself cannot be deleted.

Every change is reported to the repository's version control, so keep uploads
small and named in English.
`
