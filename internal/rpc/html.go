package rpc

// indexHTML and networkHTML are minimal stand-ins for the node's browser
// UI. The UI itself (wallet forms, chain explorer, peer map) is out of
// scope here; these exist only so GET / and GET /network satisfy their
// 200 contract without a templating dependency this facade has no
// other use for.
const indexHTML = `<!DOCTYPE html>
<html>
<head><title>tinychain</title></head>
<body>
<h1>tinychain node</h1>
<p>See /chain, /transactions, /nodes, /balance for JSON views of this node's state.</p>
</body>
</html>
`

const networkHTML = `<!DOCTYPE html>
<html>
<head><title>tinychain — network</title></head>
<body>
<h1>tinychain peer network</h1>
<p>See /nodes for the current peer set as JSON.</p>
</body>
</html>
`
