package handler

import "html/template"

// Pages are self-contained: no external assets, so the same-origin CSP needs
// no exceptions.

var indexTpl = template.Must(template.New("index").Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Defile</title>
<style>
  body { font-family: system-ui, sans-serif; background: #111; color: #ddd;
         display: flex; align-items: center; justify-content: center; height: 100vh; margin: 0; }
  .card { text-align: center; }
  h1 { font-weight: 300; letter-spacing: .3em; }
  p { color: #888; }
</style>
</head>
<body>
<div class="card">
  <h1>DEFILE</h1>
  <p>Nothing to see here.</p>
</div>
</body>
</html>
`))

type loginData struct {
	Error        string
	AuthRequired bool
	Next         string
}

var loginTpl = template.Must(template.New("login").Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Defile &middot; Login</title>
<style>
  body { font-family: system-ui, sans-serif; background: #111; color: #ddd;
         display: flex; align-items: center; justify-content: center; height: 100vh; margin: 0; }
  form { background: #1b1b1b; padding: 2rem; border-radius: 8px; width: 18rem; }
  h1 { font-weight: 300; margin-top: 0; }
  label { display: block; margin: .8rem 0 .2rem; color: #aaa; font-size: .85rem; }
  input { width: 100%; padding: .5rem; border: 1px solid #333; border-radius: 4px;
          background: #111; color: #ddd; box-sizing: border-box; }
  button { margin-top: 1.2rem; width: 100%; padding: .6rem; border: 0; border-radius: 4px;
           background: #2d6cdf; color: #fff; cursor: pointer; }
  .error { color: #e05c5c; font-size: .85rem; margin: .8rem 0 0; }
  .notice { color: #caa94f; font-size: .85rem; margin: .8rem 0 0; }
</style>
</head>
<body>
<form method="post" action="/admin/login">
  <h1>Defile</h1>
  <label for="username">Username</label>
  <input id="username" name="username" autocomplete="username" autofocus required>
  <label for="password">Password</label>
  <input id="password" name="password" type="password" autocomplete="current-password" required>
  <input type="hidden" name="next" value="{{.Next}}">
  <button type="submit">Sign in</button>
  {{if .Error}}<p class="error">{{.Error}}</p>{{end}}
  {{if .AuthRequired}}<p class="notice">Please sign in to continue.</p>{{end}}
</form>
</body>
</html>
`))

type adminFileView struct {
	Name    string
	Size    string
	SHA256  string
	ModTime string
}

type adminShareView struct {
	UID       string
	Filename  string
	Link      string
	CreatedAt string
}

type adminData struct {
	Username string
	Error    string
	Notice   string
	Files    []adminFileView
	Shares   []adminShareView
}

var adminTpl = template.Must(template.New("admin").Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Defile &middot; Admin</title>
<style>
  body { font-family: system-ui, sans-serif; background: #111; color: #ddd;
         max-width: 64rem; margin: 0 auto; padding: 1.5rem; }
  h1 { font-weight: 300; }
  h2 { font-weight: 400; border-bottom: 1px solid #333; padding-bottom: .3rem; margin-top: 2rem; }
  table { width: 100%; border-collapse: collapse; font-size: .9rem; }
  th { text-align: left; color: #888; font-weight: 400; padding: .4rem .6rem; }
  td { padding: .4rem .6rem; border-top: 1px solid #222; vertical-align: middle; }
  code { color: #8fb573; font-size: .8rem; word-break: break-all; }
  a { color: #2d6cdf; }
  form.inline { display: inline; }
  button { padding: .3rem .7rem; border: 0; border-radius: 4px; background: #2d6cdf;
           color: #fff; cursor: pointer; }
  button.danger { background: #a33; }
  input { padding: .4rem; border: 1px solid #333; border-radius: 4px; background: #1b1b1b; color: #ddd; }
  .topbar { display: flex; justify-content: space-between; align-items: baseline; }
  .banner { padding: .6rem .8rem; border-radius: 4px; margin: 1rem 0; }
  .banner.error { background: #3a1c1c; color: #e05c5c; }
  .banner.notice { background: #1c2e1c; color: #8fb573; }
  .empty { color: #666; padding: .6rem; }
</style>
</head>
<body>
<div class="topbar">
  <h1>Defile admin</h1>
  <div>{{.Username}} &middot; <a href="/admin/logout">logout</a></div>
</div>

{{if .Error}}<div class="banner error">{{.Error}}</div>{{end}}
{{if .Notice}}<div class="banner notice">{{.Notice}}</div>{{end}}

<h2>Upload</h2>
<form method="post" action="/admin/uploadFile" enctype="multipart/form-data">
  <input type="file" name="file" multiple required>
  <button type="submit">Upload</button>
</form>

<h2>Files</h2>
{{if .Files}}
<table>
  <tr><th>Name</th><th>Size</th><th>Modified</th><th>SHA-256</th><th></th></tr>
  {{range .Files}}
  <tr>
    <td>{{.Name}}</td>
    <td>{{.Size}}</td>
    <td>{{.ModTime}}</td>
    <td><code>{{.SHA256}}</code></td>
    <td>
      <form class="inline" method="post" action="/admin/createShare">
        <input type="hidden" name="filename" value="{{.Name}}">
        <button type="submit">Share</button>
      </form>
      <form class="inline" method="post" action="/admin/deleteFile">
        <input type="hidden" name="filename" value="{{.Name}}">
        <button type="submit" class="danger">Delete</button>
      </form>
    </td>
  </tr>
  {{end}}
</table>
{{else}}<div class="empty">No files uploaded yet.</div>{{end}}

<h2>Active shares</h2>
{{if .Shares}}
<table>
  <tr><th>File</th><th>Link</th><th>Created</th><th></th></tr>
  {{range .Shares}}
  <tr>
    <td>{{.Filename}}</td>
    <td><a href="{{.Link}}">{{.Link}}</a></td>
    <td>{{.CreatedAt}}</td>
    <td>
      <form class="inline" method="post" action="/admin/revokeShare">
        <input type="hidden" name="uid" value="{{.UID}}">
        <button type="submit" class="danger">Revoke</button>
      </form>
    </td>
  </tr>
  {{end}}
</table>
{{else}}<div class="empty">No active shares. Each share link works exactly once.</div>{{end}}

<h2>Change password</h2>
<form method="post" action="/admin/changePassword">
  <input name="password" type="password" autocomplete="new-password" placeholder="New password" required>
  <button type="submit">Update</button>
</form>
</body>
</html>
`))
